// Package vouchers stores payment evidence metadata and hands out the
// opaque references the ledgers attach to submitted payments.
package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferia/conferia/internal/shared"
)

// Voucher is the stored metadata for one piece of payment evidence. The
// binary itself lives outside the service; only the reference circulates.
type Voucher struct {
	Ref         string    `json:"ref"`
	OrganizerID string    `json:"organizerId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// RegisterInput bundles a voucher registration.
type RegisterInput struct {
	OrganizerID string
	Filename    string
	ContentType string
	SizeBytes   int64
}

// StorePort defines data access methods for voucher metadata.
type StorePort interface {
	Insert(ctx context.Context, v Voucher) error
	Get(ctx context.Context, ref string) (Voucher, error)
}

// Service issues and resolves voucher references.
type Service struct {
	store StorePort
}

// NewService builds Service instance.
func NewService(store StorePort) *Service {
	return &Service{store: store}
}

// Register stores evidence metadata and returns the new opaque reference.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Voucher, error) {
	if in.OrganizerID == "" {
		return Voucher{}, errors.New("vouchers: organizer required")
	}
	if in.Filename == "" {
		return Voucher{}, errors.New("vouchers: filename required")
	}
	v := Voucher{
		Ref:         uuid.NewString(),
		OrganizerID: in.OrganizerID,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, v); err != nil {
		return Voucher{}, err
	}
	return v, nil
}

// Resolve returns the metadata behind a reference.
func (s *Service) Resolve(ctx context.Context, ref string) (Voucher, error) {
	return s.store.Get(ctx, ref)
}

// Store provides PostgreSQL backed voucher metadata persistence.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Insert stores voucher metadata.
func (s *Store) Insert(ctx context.Context, v Voucher) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO vouchers (ref, organizer_id, filename, content_type, size_bytes, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		v.Ref, v.OrganizerID, v.Filename, v.ContentType, v.SizeBytes, v.UploadedAt)
	return err
}

// Get returns voucher metadata by reference.
func (s *Store) Get(ctx context.Context, ref string) (Voucher, error) {
	var v Voucher
	err := s.pool.QueryRow(ctx, `SELECT ref, organizer_id, filename, content_type, size_bytes, uploaded_at
FROM vouchers WHERE ref = $1`, ref).
		Scan(&v.Ref, &v.OrganizerID, &v.Filename, &v.ContentType, &v.SizeBytes, &v.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, fmt.Errorf("vouchers: %s: %w", ref, shared.ErrNotFound)
	}
	if err != nil {
		return Voucher{}, err
	}
	return v, nil
}
