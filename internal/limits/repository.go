package limits

import "context"

// Repository reads the two limit tables. A nil result means "no rule"; an
// explicit 0 is a hard block and must survive the round-trip.
type Repository interface {
	ParentLimit(ctx context.Context, childID, productID string) (*int, error)
	ClubLimit(ctx context.Context, clubID, productID string) (*int, error)
	ParentLimitsForChild(ctx context.Context, childID string) (map[string]int, error)
	ClubLimits(ctx context.Context, clubID string) (map[string]int, error)
}
