package meetings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conferia/conferia/internal/shared"
)

// RepositoryPort defines data access methods for meetings and signatures.
type RepositoryPort interface {
	Insert(ctx context.Context, meeting Meeting) error
	Get(ctx context.Context, meetingID string) (Meeting, error)
	List(ctx context.Context) ([]Meeting, error)
	Close(ctx context.Context, meetingID string, closedAt time.Time) error
	InsertSignature(ctx context.Context, sig Signature) error
	ListSignatures(ctx context.Context, meetingID string) ([]Signature, error)
}

// Service handles meeting lifecycle and the signature window. The window is
// checked against the wall clock on every signature attempt; nothing runs
// when it elapses.
type Service struct {
	repo   RepositoryPort
	now    func() time.Time
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// Create opens a new meeting.
func (s *Service) Create(ctx context.Context, title string) (Meeting, error) {
	if title == "" {
		return Meeting{}, errors.New("meetings: title required")
	}
	meeting := Meeting{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusOpen,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, meeting); err != nil {
		return Meeting{}, err
	}
	return meeting, nil
}

// Get returns a meeting with its remaining signature window.
func (s *Service) Get(ctx context.Context, meetingID string) (Meeting, time.Duration, error) {
	meeting, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return Meeting{}, 0, err
	}
	var remaining time.Duration
	if meeting.Status == StatusClosed && meeting.ClosedAt != nil {
		remaining = TimeRemaining(s.now(), *meeting.ClosedAt)
	}
	return meeting, remaining, nil
}

// List returns every meeting newest first.
func (s *Service) List(ctx context.Context) ([]Meeting, error) {
	return s.repo.List(ctx)
}

// Close adjourns an open meeting, starting the signature window.
func (s *Service) Close(ctx context.Context, meetingID string) (Meeting, error) {
	meeting, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return Meeting{}, err
	}
	if meeting.Status != StatusOpen {
		return Meeting{}, fmt.Errorf("meetings: %s already closed: %w", meetingID, shared.ErrInvalidState)
	}
	closedAt := s.now()
	if err := s.repo.Close(ctx, meetingID, closedAt); err != nil {
		return Meeting{}, err
	}
	meeting.Status = StatusClosed
	meeting.ClosedAt = &closedAt
	return meeting, nil
}

// Sign records an attendance signature. Signing an open meeting or signing
// twice fails; a signature after the window returns shared.ErrWindowExpired.
func (s *Service) Sign(ctx context.Context, meetingID, organizerID string) (Signature, error) {
	if organizerID == "" {
		return Signature{}, errors.New("meetings: organizer required")
	}
	meeting, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return Signature{}, err
	}
	if meeting.Status != StatusClosed || meeting.ClosedAt == nil {
		return Signature{}, fmt.Errorf("meetings: %s not closed: %w", meetingID, shared.ErrInvalidState)
	}
	now := s.now()
	if !CanSign(now, *meeting.ClosedAt) {
		return Signature{}, fmt.Errorf("meetings: signature window for %s elapsed: %w", meetingID, shared.ErrWindowExpired)
	}
	existing, err := s.repo.ListSignatures(ctx, meetingID)
	if err != nil {
		return Signature{}, err
	}
	for _, sig := range existing {
		if sig.OrganizerID == organizerID {
			return Signature{}, fmt.Errorf("meetings: %s already signed %s: %w", organizerID, meetingID, shared.ErrInvalidState)
		}
	}
	sig := Signature{MeetingID: meetingID, OrganizerID: organizerID, SignedAt: now}
	if err := s.repo.InsertSignature(ctx, sig); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// Signatures returns the attendance list for a meeting.
func (s *Service) Signatures(ctx context.Context, meetingID string) ([]Signature, error) {
	if _, err := s.repo.Get(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.repo.ListSignatures(ctx, meetingID)
}
