package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ParentLimit(ctx context.Context, childID, productID string) (*int, error) {
	var max int
	err := r.DB.GetContext(ctx, &max,
		`SELECT max_per_day FROM parent_limits WHERE child_id = $1 AND product_id = $2`,
		childID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &max, nil
}

func (r *PGRepository) ClubLimit(ctx context.Context, clubID, productID string) (*int, error) {
	var max int
	err := r.DB.GetContext(ctx, &max,
		`SELECT max_per_day FROM club_limits WHERE club_id = $1 AND product_id = $2`,
		clubID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &max, nil
}

func (r *PGRepository) ParentLimitsForChild(ctx context.Context, childID string) (map[string]int, error) {
	return r.limitMap(ctx,
		`SELECT product_id, max_per_day FROM parent_limits WHERE child_id = $1`, childID)
}

func (r *PGRepository) ClubLimits(ctx context.Context, clubID string) (map[string]int, error) {
	return r.limitMap(ctx,
		`SELECT product_id, max_per_day FROM club_limits WHERE club_id = $1`, clubID)
}

func (r *PGRepository) limitMap(ctx context.Context, query, arg string) (map[string]int, error) {
	type row struct {
		ProductID string `db:"product_id"`
		Max       int    `db:"max_per_day"`
	}
	var rows []row
	if err := r.DB.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ProductID] = r.Max
	}
	return out, nil
}
