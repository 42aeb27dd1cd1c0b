package dto

import "time"

type CommitSaleItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
	IsRefill    bool
}

type CommitSaleInput struct {
	ClubID     string
	CustomerID string
	OperatorID *string
	Items      []CommitSaleItem
}

type SaleFilters struct {
	ClubID     string
	CustomerID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

type DepositInput struct {
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Source     string  `json:"source"`
}
