package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kyozo/waitlist/internal/domain"
)

// Schema creates the submissions table. Migrate applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS waitlist_submissions (
	id                   UUID PRIMARY KEY,
	user_id              TEXT NOT NULL,
	first_name           TEXT NOT NULL,
	last_name            TEXT NOT NULL,
	email                TEXT NOT NULL,
	phone                TEXT NOT NULL DEFAULT '',
	location             TEXT NOT NULL DEFAULT '',
	role_types           TEXT[],
	creative_work        TEXT NOT NULL DEFAULT '',
	beta_testing         TEXT NOT NULL DEFAULT '',
	resonance_level      TEXT NOT NULL DEFAULT '',
	resonance_reasons    TEXT[],
	community_selections TEXT[],
	segment_answers      JSONB,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_waitlist_submissions_created_at
	ON waitlist_submissions (created_at DESC);
`

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository { return &PostgresRepository{db: db} }

// Migrate creates the table and index if they are missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate waitlist_submissions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, sub *domain.Submission) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	var segments sql.NullString
	if len(sub.SegmentAnswers) > 0 {
		raw, err := json.Marshal(sub.SegmentAnswers)
		if err != nil {
			return "", fmt.Errorf("marshal segment answers: %w", err)
		}
		segments = sql.NullString{String: string(raw), Valid: true}
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO waitlist_submissions
			(id, user_id, first_name, last_name, email, phone, location,
			 role_types, creative_work, beta_testing, resonance_level,
			 resonance_reasons, community_selections, segment_answers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING created_at
	`, id.String(), sub.UserID, sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.Location,
		pq.Array(sub.RoleTypes), sub.CreativeWork, sub.BetaTesting, sub.ResonanceLevel,
		pq.Array(sub.ResonanceReasons), pq.Array(sub.CommunitySelections), segments,
	).Scan(&sub.Timestamp)
	if err != nil {
		return "", fmt.Errorf("create submission: %w", err)
	}
	sub.ID = id.String()
	sub.Timestamp = sub.Timestamp.UTC()
	return sub.ID, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone, location,
		       role_types, creative_work, beta_testing, resonance_level,
		       resonance_reasons, community_selections, segment_answers, created_at
		FROM waitlist_submissions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			s        domain.Submission
			segments []byte
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Location,
			pq.Array(&s.RoleTypes), &s.CreativeWork, &s.BetaTesting, &s.ResonanceLevel,
			pq.Array(&s.ResonanceReasons), pq.Array(&s.CommunitySelections), &segments, &s.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if len(segments) > 0 {
			if err := json.Unmarshal(segments, &s.SegmentAnswers); err != nil {
				return nil, fmt.Errorf("decode segment answers of %s: %w", s.ID, err)
			}
		}
		s.Timestamp = s.Timestamp.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM waitlist_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
