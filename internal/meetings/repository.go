package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferia/conferia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for meetings. The
// signature uniqueness constraint lives in the table (meeting_id,
// organizer_id primary key) as a second line behind the service check.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new meeting.
func (r *Repository) Insert(ctx context.Context, meeting Meeting) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO meetings (id, title, status, created_at)
VALUES ($1, $2, $3, $4)`, meeting.ID, meeting.Title, meeting.Status, meeting.CreatedAt)
	return err
}

// Get returns a meeting by ID.
func (r *Repository) Get(ctx context.Context, meetingID string) (Meeting, error) {
	var m Meeting
	var closedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `SELECT id, title, status, created_at, closed_at
FROM meetings WHERE id = $1`, meetingID).
		Scan(&m.ID, &m.Title, &m.Status, &m.CreatedAt, &closedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Meeting{}, fmt.Errorf("meetings: %s: %w", meetingID, shared.ErrNotFound)
	}
	if err != nil {
		return Meeting{}, err
	}
	if closedAt.Valid {
		m.ClosedAt = &closedAt.Time
	}
	return m, nil
}

// List returns every meeting newest first.
func (r *Repository) List(ctx context.Context) ([]Meeting, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, status, created_at, closed_at
FROM meetings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		var closedAt pgtype.Timestamptz
		if err := rows.Scan(&m.ID, &m.Title, &m.Status, &m.CreatedAt, &closedAt); err != nil {
			return nil, err
		}
		if closedAt.Valid {
			m.ClosedAt = &closedAt.Time
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Close transitions OPEN to CLOSED, stamping the window start.
func (r *Repository) Close(ctx context.Context, meetingID string, closedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE meetings
SET status = 'CLOSED', closed_at = $2
WHERE id = $1 AND status = 'OPEN'`, meetingID, closedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meetings: %s not open: %w", meetingID, shared.ErrInvalidState)
	}
	return nil
}

// InsertSignature stores an attendance signature.
func (r *Repository) InsertSignature(ctx context.Context, sig Signature) error {
	tag, err := r.pool.Exec(ctx, `INSERT INTO meeting_signatures (meeting_id, organizer_id, signed_at)
VALUES ($1, $2, $3)
ON CONFLICT (meeting_id, organizer_id) DO NOTHING`,
		sig.MeetingID, sig.OrganizerID, sig.SignedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meetings: %s already signed %s: %w", sig.OrganizerID, sig.MeetingID, shared.ErrInvalidState)
	}
	return nil
}

// ListSignatures returns a meeting's signatures in signing order.
func (r *Repository) ListSignatures(ctx context.Context, meetingID string) ([]Signature, error) {
	rows, err := r.pool.Query(ctx, `SELECT meeting_id, organizer_id, signed_at
FROM meeting_signatures WHERE meeting_id = $1 ORDER BY signed_at`, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []Signature
	for rows.Next() {
		var s Signature
		if err := rows.Scan(&s.MeetingID, &s.OrganizerID, &s.SignedAt); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}
