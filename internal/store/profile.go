package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizmentor/internal/profile"
)

const profilesTable = "profiles"

// ProfileRepo stores profile blobs in SQL with a revision column for
// optimistic concurrency.
type ProfileRepo struct {
	store *Store
	now   func() time.Time
}

var _ profile.Repository = (*ProfileRepo)(nil)

// Load returns the stored profile, or a fresh default profile at revision
// zero when none exists.
func (r *ProfileRepo) Load(ctx context.Context, userID int64) (*profile.Profile, error) {
	query, args := r.store.builder().
		Select("data", "revision").
		From(entsql.Table(profilesTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("load profile %d: %w", userID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("load profile %d: %w", userID, err)
		}
		return profile.New(userID, ""), nil
	}

	var (
		data     string
		revision int64
	)
	if err := rows.Scan(&data, &revision); err != nil {
		return nil, fmt.Errorf("scan profile %d: %w", userID, err)
	}

	p, err := profile.Decode(userID, []byte(data))
	if err != nil {
		return nil, err
	}
	p.Revision = revision
	return p, nil
}

// Save writes p if the stored revision still matches p.Revision, then
// advances p.Revision. A mismatch yields ErrRevisionConflict.
func (r *ProfileRepo) Save(ctx context.Context, p *profile.Profile) error {
	data, err := profile.Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %d: %w", p.UserID, err)
	}
	updatedAt := r.now().Unix()
	b := r.store.builder()

	var (
		query string
		args  []any
	)
	if p.Revision == 0 {
		query, args = b.Insert(profilesTable).
			Columns("user_id", "data", "revision", "updated_at").
			Values(p.UserID, string(data), 1, updatedAt).
			OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
			Query()
	} else {
		query, args = b.Update(profilesTable).
			Set("data", string(data)).
			Set("revision", p.Revision+1).
			Set("updated_at", updatedAt).
			Where(entsql.And(
				entsql.EQ("user_id", p.UserID),
				entsql.EQ("revision", p.Revision),
			)).
			Query()
	}

	res, err := r.store.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("save profile %d: %w", p.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save profile %d: %w", p.UserID, err)
	}
	if n == 0 {
		return fmt.Errorf("save profile %d at revision %d: %w", p.UserID, p.Revision, ErrRevisionConflict)
	}

	p.Revision++
	return nil
}

// Count returns the number of stored profiles.
func (r *ProfileRepo) Count(ctx context.Context) (int, error) {
	query, args := r.store.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(profilesTable)).
		Query()

	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
