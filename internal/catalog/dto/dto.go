package dto

type ProductFilters struct {
	ClubID      string
	EnabledOnly bool
}
