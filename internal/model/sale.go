package model

import "time"

type Sale struct {
	ID         string    `db:"id" json:"id"`
	ClubID     string    `db:"club_id" json:"club_id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	OperatorID *string   `db:"operator_id" json:"operator_id"`
	Total      float64   `db:"total" json:"total"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Items      []SaleItem `db:"-" json:"items"`
}

type SaleItem struct {
	ID          string  `db:"id" json:"id"`
	SaleID      string  `db:"sale_id" json:"sale_id"`
	ProductID   string  `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
	IsRefill    bool    `db:"is_refill" json:"is_refill"`
}

// SaleRow is the read model the daily cache serves: one completed sale with
// its line items, enough for limit counting and refill accounting.
type SaleRow struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []SaleItem `json:"items"`
}

const (
	SaleStatusCompleted = "completed"
	SaleStatusReversed  = "reversed"
)
