package dto

import "github.com/flangoapp/flango-pos-service/internal/model"

// Decision is a business-rule verdict, not an error: denied purchases carry a
// user-readable message.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}

type CanPurchaseInput struct {
	ProductID string
	ChildID   string
	ClubID    string
	Cart      []model.OrderLine
	// NameFallback is shown when the product record itself is gone.
	NameFallback string
	// FinalCheck re-verifies the whole order at commit time; cart quantity is
	// then excluded so the order doesn't count against itself.
	FinalCheck bool
}
