package model

// SugarPolicy limits purchases of products flagged unhealthy. Nil caps are
// "no cap"; BlockUnhealthy wins over both counters.
type SugarPolicy struct {
	BlockUnhealthy               bool `json:"block_unhealthy"`
	MaxUnhealthyPerDay           *int `json:"max_unhealthy_per_day"`
	MaxUnhealthyPerProductPerDay *int `json:"max_unhealthy_per_product_per_day"`
}

// UnhealthySnapshot counts already-purchased unhealthy units for today.
type UnhealthySnapshot struct {
	Total      int            `json:"total"`
	PerProduct map[string]int `json:"per_product"`
}
