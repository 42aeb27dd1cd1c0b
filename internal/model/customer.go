package model

type Customer struct {
	BaseModel
	ClubID          string   `db:"club_id" json:"club_id"`
	Name            string   `db:"name" json:"name"`
	Avatar          *string  `db:"avatar" json:"avatar"`
	Balance         float64  `db:"balance" json:"balance"`
	DailySpendLimit *float64 `db:"daily_spend_limit" json:"daily_spend_limit"` // Nil = no budget
	IsActive        bool     `db:"is_active" json:"is_active"`
}

type Admin struct {
	BaseModel
	ClubID string `db:"club_id" json:"club_id"`
	Name   string `db:"name" json:"name"`
	Role   string `db:"role" json:"role"`
}
