package dto

type CreateProductInput struct {
	ClubID                 string   `json:"club_id"`
	Name                   string   `json:"name"`
	Emoji                  string   `json:"emoji"`
	Price                  float64  `json:"price"`
	MaxPerDay              *int     `json:"max_per_day"`
	Unhealthy              bool     `json:"unhealthy"`
	RefillEnabled          bool     `json:"refill_enabled"`
	RefillPrice            *float64 `json:"refill_price"`
	RefillTimeLimitMinutes int      `json:"refill_time_limit_minutes"`
	RefillMaxRefills       int      `json:"refill_max_refills"`
	SortOrder              int      `json:"sort_order"`
}

type UpdateProductInput struct {
	ID                     string   `json:"id"`
	ClubID                 string   `json:"club_id"`
	Name                   string   `json:"name"`
	Emoji                  string   `json:"emoji"`
	Price                  float64  `json:"price"`
	MaxPerDay              *int     `json:"max_per_day"`
	Unhealthy              bool     `json:"unhealthy"`
	IsEnabled              bool     `json:"is_enabled"`
	RefillEnabled          bool     `json:"refill_enabled"`
	RefillPrice            *float64 `json:"refill_price"`
	RefillTimeLimitMinutes int      `json:"refill_time_limit_minutes"`
	RefillMaxRefills       int      `json:"refill_max_refills"`
	SortOrder              int      `json:"sort_order"`
}
