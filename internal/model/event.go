package model

// BalanceEvent is published to listeners whenever a balance mutation has been
// applied locally, whatever its origin.
type BalanceEvent struct {
	UserID     string  `json:"user_id"`
	NewBalance float64 `json:"new_balance"`
	Delta      float64 `json:"delta"`
	Source     string  `json:"source"`
}

const (
	BalanceSourceSale    = "sale"
	BalanceSourceUndo    = "undo"
	BalanceSourceDeposit = "deposit"
	BalanceSourceEdit    = "balance_edit"
)
