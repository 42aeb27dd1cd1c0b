package model

// ProductLimit is a parent- or club-scoped daily cap for one product.
// A Max of 0 is a hard block, not "unset".
type ProductLimit struct {
	ID        string `db:"id"`
	ProductID string `db:"product_id"`
	Max       int    `db:"max_per_day"`
}

// LimitSnapshotEntry is the precomputed per-product view used to lock the
// product grid without one round-trip per product.
type LimitSnapshotEntry struct {
	EffectiveMaxPerDay     *int     `json:"effective_max_per_day"` // Nil = unlimited
	ParentRule             bool     `json:"parent_rule"`           // True when a parent override decided the cap
	TodaysQty              int      `json:"todays_qty"`
	RefillEnabled          bool     `json:"refill_enabled"`
	RefillPrice            *float64 `json:"refill_price"`
	RefillTimeLimitMinutes int      `json:"refill_time_limit_minutes"`
	RefillMaxRefills       int      `json:"refill_max_refills"`
}

// LimitSnapshot maps product id to its entry for one (child, club) pair.
type LimitSnapshot struct {
	ChildID     string                        `json:"child_id"`
	ClubID      string                        `json:"club_id"`
	Entries     map[string]LimitSnapshotEntry `json:"entries"`
	TodaysSpend float64                       `json:"todays_spend"`
}
