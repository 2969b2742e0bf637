package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizmentor/internal/session"
)

const resultsTable = "results"

// ResultRepo keeps the latest session result per user.
type ResultRepo struct {
	store *Store
	now   func() time.Time
}

var _ session.ResultRepository = (*ResultRepo)(nil)

func (r *ResultRepo) Latest(ctx context.Context, userID int64) (*session.Result, bool, error) {
	query, args := r.store.builder().
		Select("data").
		From(entsql.Table(resultsTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("load result %d: %w", userID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var data string
	if err := rows.Scan(&data); err != nil {
		return nil, false, fmt.Errorf("scan result %d: %w", userID, err)
	}

	var res session.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, false, fmt.Errorf("decode result %d: %w", userID, err)
	}
	return &res, true, nil
}

// Save replaces the user's latest result.
func (r *ResultRepo) Save(ctx context.Context, res *session.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result %d: %w", res.UserID, err)
	}

	query, args := r.store.builder().
		Insert(resultsTable).
		Columns("user_id", "data", "updated_at").
		Values(res.UserID, string(data), r.now().Unix()).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return fmt.Errorf("save result %d: %w", res.UserID, err)
	}
	return nil
}
