package model

// ItemSummary is one grouped receipt line.
type ItemSummary struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
	IsRefill  bool    `json:"is_refill"`
}

// PurchaseEvaluation is derived, never persisted. Recomputed on every cart or
// customer change.
type PurchaseEvaluation struct {
	OK                  bool          `json:"ok"`
	HasCustomer         bool          `json:"has_customer"`
	HasItems            bool          `json:"has_items"`
	Total               float64       `json:"total"`
	NewBalance          float64       `json:"new_balance"`
	ItemsSummary        []ItemSummary `json:"items_summary"`
	OverdraftBreached   bool          `json:"overdraft_breached"`
	AvailableUntilLimit float64       `json:"available_until_limit"`
	OverdraftLimit      float64       `json:"overdraft_limit"`
}
