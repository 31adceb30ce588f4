// internal/reservation/store.go
package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store writes reservations to PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a pending reservation and returns the stored row.
// When the request carries an idempotency key and a row with that key
// already exists, the existing row is returned instead of inserting a
// duplicate, so a client retry after a dropped response cannot
// double-book.
func (s *Store) Create(ctx context.Context, req *Request) (*Reservation, error) {
	if req.RequestID != "" {
		return s.createIdempotent(ctx, req)
	}

	res := s.fromRequest(req)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reservations (id, name, phone, email, date, time, party_size, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, res.ID, res.Name, res.Phone, nullIfEmpty(res.Email), res.Date, res.Time,
		res.PartySize, nullIfEmpty(res.Notes), res.Status,
	).Scan(&res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	return res, nil
}

func (s *Store) createIdempotent(ctx context.Context, req *Request) (*Reservation, error) {
	res := s.fromRequest(req)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reservations (id, request_id, name, phone, email, date, time, party_size, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (request_id) DO NOTHING
		RETURNING created_at
	`, res.ID, req.RequestID, res.Name, res.Phone, nullIfEmpty(res.Email), res.Date, res.Time,
		res.PartySize, nullIfEmpty(res.Notes), res.Status,
	).Scan(&res.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// Conflict: a previous attempt with this request id won.
		return s.getByRequestID(ctx, req.RequestID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	return res, nil
}

func (s *Store) getByRequestID(ctx context.Context, requestID string) (*Reservation, error) {
	var (
		res          Reservation
		email, notes sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, date, time, party_size, notes, status, created_at
		FROM reservations
		WHERE request_id = $1
	`, requestID).Scan(&res.ID, &res.Name, &res.Phone, &email, &res.Date, &res.Time,
		&res.PartySize, &notes, &res.Status, &res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("select reservation by request id: %w", err)
	}
	res.Email = email.String
	res.Notes = notes.String

	return &res, nil
}

func (s *Store) fromRequest(req *Request) *Reservation {
	return &Reservation{
		ID:        uuid.New(),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
		Notes:     req.Notes,
		Status:    StatusPending,
	}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
