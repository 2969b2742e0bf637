package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizmentor/internal/session"
)

const sessionsTable = "sessions"

// SessionRepo keeps each user's active session in SQL so that any
// process serving the user can resume it. Writes carry the session ID
// and revision they were loaded at; a stale or replaced copy gets
// ErrRevisionConflict.
type SessionRepo struct {
	store *Store
	now   func() time.Time
}

var _ session.Repository = (*SessionRepo)(nil)

func (r *SessionRepo) Get(ctx context.Context, userID int64) (*session.Session, bool, error) {
	query, args := r.store.builder().
		Select("data", "revision").
		From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("load session %d: %w", userID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var (
		data     string
		revision int64
	)
	if err := rows.Scan(&data, &revision); err != nil {
		return nil, false, fmt.Errorf("scan session %d: %w", userID, err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, false, fmt.Errorf("decode session %d: %w", userID, err)
	}
	s.Revision = revision
	return &s, true, nil
}

// Put stores s. A session that was never stored replaces whatever the
// user had; a loaded one is only written over the same session at the
// same revision. On success s.Revision advances.
func (r *SessionRepo) Put(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	updatedAt := r.now().Unix()
	b := r.store.builder()

	var (
		query string
		args  []any
	)
	if s.Revision == 0 {
		query, args = b.Insert(sessionsTable).
			Columns("user_id", "session_id", "data", "revision", "updated_at").
			Values(s.UserID, s.ID, string(data), 1, updatedAt).
			OnConflict(
				entsql.ConflictColumns("user_id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
	} else {
		query, args = b.Update(sessionsTable).
			Set("data", string(data)).
			Set("revision", s.Revision+1).
			Set("updated_at", updatedAt).
			Where(entsql.And(
				entsql.EQ("user_id", s.UserID),
				entsql.EQ("session_id", s.ID),
				entsql.EQ("revision", s.Revision),
			)).
			Query()
	}

	res, err := r.store.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	if s.Revision != 0 {
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("save session %s: %w", s.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("save session %s at revision %d: %w", s.ID, s.Revision, ErrRevisionConflict)
		}
	}

	s.Revision++
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, s *session.Session) error {
	query, args := r.store.builder().
		Delete(sessionsTable).
		Where(entsql.And(
			entsql.EQ("user_id", s.UserID),
			entsql.EQ("session_id", s.ID),
		)).
		Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return fmt.Errorf("delete session %s: %w", s.ID, err)
	}
	return nil
}
