package model

// OrderLine is one unit in the in-memory cart. Duplicates are allowed, one
// line per unit. When a refill was granted at add-time the effective fields
// carry the substituted price/name and IsRefill is set.
type OrderLine struct {
	ProductID      string   `json:"product_id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Emoji          *string  `json:"emoji"`
	EffectivePrice *float64 `json:"effective_price"`
	EffectiveName  *string  `json:"effective_name"`
	IsRefill       bool     `json:"is_refill"`
	Unhealthy      bool     `json:"unhealthy"`
}

// UnitPrice returns the price this line actually charges.
func (l OrderLine) UnitPrice() float64 {
	if l.EffectivePrice != nil {
		return *l.EffectivePrice
	}
	return l.Price
}

// DisplayName returns the name shown on receipts, e.g. "Cocoa (refill)".
func (l OrderLine) DisplayName() string {
	if l.EffectiveName != nil {
		return *l.EffectiveName
	}
	return l.Name
}
