package meetings

import "time"

// MeetingStatus enumerates meeting lifecycle states.
type MeetingStatus string

const (
	// StatusOpen marks a meeting still in session. Signatures are rejected.
	StatusOpen MeetingStatus = "OPEN"
	// StatusClosed marks an adjourned meeting. Attendees may sign until the
	// window elapses.
	StatusClosed MeetingStatus = "CLOSED"
)

// SignatureWindow is how long attendees may sign after the meeting closes.
const SignatureWindow = 15 * time.Minute

// Meeting is a committee session with attendance signatures.
type Meeting struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Status    MeetingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	ClosedAt  *time.Time    `json:"closedAt,omitempty"`
}

// Signature is one attendee's attendance record for a meeting.
type Signature struct {
	MeetingID   string    `json:"meetingId"`
	OrganizerID string    `json:"organizerId"`
	SignedAt    time.Time `json:"signedAt"`
}

// CanSign reports whether a signature at now falls inside the window. The
// boundary is inclusive: a signature at exactly SignatureWindow after close
// is accepted. Wall clocks only, no timers.
func CanSign(now, closedAt time.Time) bool {
	elapsed := now.Sub(closedAt)
	return elapsed >= 0 && elapsed <= SignatureWindow
}

// TimeRemaining returns how much of the window is left at now, zero once
// elapsed. Used by the countdown display.
func TimeRemaining(now, closedAt time.Time) time.Duration {
	remaining := SignatureWindow - now.Sub(closedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
