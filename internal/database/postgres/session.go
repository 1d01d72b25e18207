package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/repository"
)

// SessionRepository persists opaque session blobs for one session kind.
// The blob schema is owned by the session engine; the store only keeps
// data, timestamps and a surrogate id.
type SessionRepository struct {
	db   *pgxpool.Pool
	kind string
}

var _ repository.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(db *pgxpool.Pool, kind string) *SessionRepository {
	return &SessionRepository{db: db, kind: kind}
}

// Create inserts a new session row and returns its id.
func (r *SessionRepository) Create(ctx context.Context, data []byte, createdAt, updatedAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO game_sessions (kind, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING session_id`,
		r.kind, data, createdAt, updatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToInsertSession, err)
	}
	return id, nil
}

// Update replaces the blob of an existing session row.
func (r *SessionRepository) Update(ctx context.Context, id int64, data []byte, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE game_sessions
		 SET data = $3, updated_at = $4
		 WHERE session_id = $1 AND kind = $2`,
		id, r.kind, data, updatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateSession, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s session %d", domain.ErrSessionNotFound, r.kind, id)
	}
	return nil
}

// Delete removes a session row. Deleting an already-removed row is not an
// error; purge workers race with explicit finishes.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM game_sessions WHERE session_id = $1 AND kind = $2`,
		id, r.kind)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDeleteSession, err)
	}
	return nil
}

// List returns all session rows of this store's kind ordered by id.
func (r *SessionRepository) List(ctx context.Context) ([]repository.SessionRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT session_id, data, created_at, updated_at
		 FROM game_sessions
		 WHERE kind = $1
		 ORDER BY session_id`,
		r.kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
	}
	defer rows.Close()

	var records []repository.SessionRecord
	for rows.Next() {
		var rec repository.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
	}
	return records, nil
}
