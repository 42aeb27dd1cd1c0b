package model

import "time"

type Product struct {
	BaseModel
	ClubID                 string   `db:"club_id" json:"club_id"`
	Name                   string   `db:"name" json:"name"`
	Emoji                  *string  `db:"emoji" json:"emoji"` // Nullable
	Price                  float64  `db:"price" json:"price"`
	MaxPerDay              *int     `db:"max_per_day" json:"max_per_day"` // Nil = unlimited
	Unhealthy              bool     `db:"unhealthy" json:"unhealthy"`
	IsEnabled              bool     `db:"is_enabled" json:"is_enabled"`
	RefillEnabled          bool     `db:"refill_enabled" json:"refill_enabled"`
	RefillPrice            *float64 `db:"refill_price" json:"refill_price"` // Nullable
	RefillTimeLimitMinutes int      `db:"refill_time_limit_minutes" json:"refill_time_limit_minutes"`
	RefillMaxRefills       int      `db:"refill_max_refills" json:"refill_max_refills"`
	SortOrder              int      `db:"sort_order" json:"sort_order"`
}

// RefillEligibility is the evaluator output for one (child, product) pair.
type RefillEligibility struct {
	Eligible      bool       `json:"eligible"`
	PurchaseCount int        `json:"purchase_count"`
	RefillsUsed   int        `json:"refills_used"`
	LastPurchase  *time.Time `json:"last_purchase"`
}
