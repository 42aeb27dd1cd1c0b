package order

import (
	"math"

	"github.com/flangoapp/flango-pos-service/internal/model"
)

// SafeNumber coerces NaN and infinities to 0. Bad data is masked rather than
// failed on; the till keeps running on a zero instead of crashing mid-queue.
func SafeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

type EvaluateInput struct {
	Customer       *model.Customer
	CurrentBalance float64
	Lines          []model.OrderLine
	MaxOverdraft   float64 // zero or negative floor, e.g. -10
}

// Evaluate computes the order total, grouped summary and overdraft
// admissibility. Pure: identical input yields identical output.
func Evaluate(in EvaluateInput) model.PurchaseEvaluation {
	balance := SafeNumber(in.CurrentBalance)
	floor := SafeNumber(in.MaxOverdraft)

	total := 0.0
	for _, line := range in.Lines {
		total += SafeNumber(line.UnitPrice())
	}
	newBalance := balance - total

	eval := model.PurchaseEvaluation{
		HasCustomer:         in.Customer != nil,
		HasItems:            len(in.Lines) > 0,
		Total:               total,
		NewBalance:          newBalance,
		ItemsSummary:        summarize(in.Lines),
		OverdraftBreached:   newBalance < floor,
		AvailableUntilLimit: balance - floor,
		OverdraftLimit:      floor,
	}
	eval.OK = eval.HasCustomer && eval.HasItems && !eval.OverdraftBreached
	return eval
}

// summarize groups lines by product, keeping refill units on their own line
// since they charge a different price. First-seen order is preserved.
func summarize(lines []model.OrderLine) []model.ItemSummary {
	type key struct {
		productID string
		isRefill  bool
	}
	index := map[key]int{}
	var out []model.ItemSummary

	for _, line := range lines {
		k := key{productID: line.ProductID, isRefill: line.IsRefill}
		price := SafeNumber(line.UnitPrice())
		if i, ok := index[k]; ok {
			out[i].Quantity++
			out[i].Amount += price
			continue
		}
		index[k] = len(out)
		out = append(out, model.ItemSummary{
			ProductID: line.ProductID,
			Name:      line.DisplayName(),
			Quantity:  1,
			UnitPrice: price,
			Amount:    price,
			IsRefill:  line.IsRefill,
		})
	}
	return out
}
