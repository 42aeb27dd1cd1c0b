package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/internal/sales/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) SalesForRange(ctx context.Context, childID, clubID string, from, to time.Time) ([]model.SaleRow, error) {
	query := `
        SELECT id, created_at FROM sales
        WHERE customer_id = $1 AND status = 'completed'
          AND created_at >= $2 AND created_at < $3
    `
	args := []interface{}{childID, from, to}
	if clubID != "" {
		query += ` AND club_id = $4`
		args = append(args, clubID)
	}
	query += ` ORDER BY created_at`

	type header struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	var headers []header
	if err := r.DB.SelectContext(ctx, &headers, query, args...); err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []model.SaleRow{}, nil
	}

	ids := make([]string, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}

	itemQuery, itemArgs, err := sqlx.In(`SELECT * FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	itemQuery = r.DB.Rebind(itemQuery)

	var items []model.SaleItem
	if err := r.DB.SelectContext(ctx, &items, itemQuery, itemArgs...); err != nil {
		return nil, err
	}

	bySale := map[string][]model.SaleItem{}
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}

	rows := make([]model.SaleRow, 0, len(headers))
	for _, h := range headers {
		rows = append(rows, model.SaleRow{
			ID:        h.ID,
			CreatedAt: h.CreatedAt,
			Items:     bySale[h.ID],
		})
	}
	return rows, nil
}

func (r *PGRepository) CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, float64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	total := 0.0
	for _, it := range input.Items {
		total += float64(it.Quantity) * it.Price
	}

	sale := &model.Sale{
		ID:         uuid.New().String(),
		ClubID:     input.ClubID,
		CustomerID: input.CustomerID,
		OperatorID: input.OperatorID,
		Total:      total,
		Status:     model.SaleStatusCompleted,
		CreatedAt:  now,
	}

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO sales (id, club_id, customer_id, operator_id, total, status, created_at)
        VALUES (:id, :club_id, :customer_id, :operator_id, :total, :status, :created_at)
    `, sale)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to insert sale: %w", err)
	}

	for _, it := range input.Items {
		item := model.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			IsRefill:    it.IsRefill,
		}
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, price, is_refill)
            VALUES (:id, :sale_id, :product_id, :product_name, :quantity, :price, :is_refill)
        `, item)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to insert sale item: %w", err)
		}
		sale.Items = append(sale.Items, item)
	}

	var newBalance float64
	err = tx.GetContext(ctx, &newBalance, `
        UPDATE customers SET balance = balance - $1, updated_at = $2
        WHERE id = $3
        RETURNING balance
    `, total, now, input.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, errors.New("customer not found")
		}
		return nil, 0, fmt.Errorf("failed to debit balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return sale, newBalance, nil
}

func (r *PGRepository) UndoLastSale(ctx context.Context, childID string, operatorID string) (*model.Sale, float64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var sale model.Sale
	err = tx.GetContext(ctx, &sale, `
        SELECT id, club_id, customer_id, operator_id, total, status, created_at
        FROM sales
        WHERE customer_id = $1 AND status = 'completed'
        ORDER BY created_at DESC
        LIMIT 1
        FOR UPDATE
    `, childID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, sales.ErrNoSaleToUndo
		}
		return nil, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sales SET status = $1 WHERE id = $2`, model.SaleStatusReversed, sale.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to mark sale reversed: %w", err)
	}

	var newBalance float64
	err = tx.GetContext(ctx, &newBalance, `
        UPDATE customers SET balance = balance + $1, updated_at = now()
        WHERE id = $2
        RETURNING balance
    `, sale.Total, childID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to credit balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	sale.Status = model.SaleStatusReversed
	return &sale, newBalance, nil
}

func (r *PGRepository) ListSales(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ClubID != "" {
		conditions = append(conditions, "club_id = :club_id")
		args["club_id"] = f.ClubID
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to")
		args["to"] = *f.To
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*) FROM sales"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM sales" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.Sale
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM customers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) ApplyDeposit(ctx context.Context, customerID string, amount float64) (float64, error) {
	var newBalance float64
	err := r.DB.GetContext(ctx, &newBalance, `
        UPDATE customers SET balance = balance + $1, updated_at = now()
        WHERE id = $2
        RETURNING balance
    `, amount, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.New("customer not found")
		}
		return 0, err
	}
	return newBalance, nil
}

func (r *PGRepository) SetBalance(ctx context.Context, customerID string, balance float64) (float64, error) {
	var newBalance float64
	err := r.DB.GetContext(ctx, &newBalance, `
        UPDATE customers SET balance = $1, updated_at = now()
        WHERE id = $2
        RETURNING balance
    `, balance, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.New("customer not found")
		}
		return 0, err
	}
	return newBalance, nil
}
