package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Caller decides whether a missing product is an error
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ClubID != "" {
		conditions = append(conditions, "club_id = :club_id")
		args["club_id"] = f.ClubID
	}
	if f.EnabledOnly {
		conditions = append(conditions, "is_enabled = true")
	}

	query := "SELECT * FROM products"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sort_order, name"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var items []model.Product
	err = nstmt.SelectContext(ctx, &items, args)
	return items, err
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, club_id, name, emoji, price, max_per_day, unhealthy, is_enabled,
            refill_enabled, refill_price, refill_time_limit_minutes, refill_max_refills,
            sort_order, created_at, updated_at
        )
        VALUES (
            :id, :club_id, :name, :emoji, :price, :max_per_day, :unhealthy, :is_enabled,
            :refill_enabled, :refill_price, :refill_time_limit_minutes, :refill_max_refills,
            :sort_order, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products SET
            name = :name,
            emoji = :emoji,
            price = :price,
            max_per_day = :max_per_day,
            unhealthy = :unhealthy,
            is_enabled = :is_enabled,
            refill_enabled = :refill_enabled,
            refill_price = :refill_price,
            refill_time_limit_minutes = :refill_time_limit_minutes,
            refill_max_refills = :refill_max_refills,
            sort_order = :sort_order,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE products SET is_enabled = $1, updated_at = now() WHERE id = $2`, enabled, id)
	return err
}
