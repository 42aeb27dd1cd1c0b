package order

import (
	"sync"

	"github.com/flangoapp/flango-pos-service/internal/model"
)

type AddReason string

const (
	ReasonLimit        AddReason = "limit"         // order ceiling hit
	ReasonProductLimit AddReason = "product-limit" // per-product daily cap hit
)

type AddResult struct {
	Success bool      `json:"success"`
	Reason  AddReason `json:"reason,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Cart is the authoritative in-memory order: an ordered sequence of lines,
// one line per unit, never longer than maxItems.
type Cart struct {
	mu       sync.Mutex
	lines    []model.OrderLine
	maxItems int
}

func NewCart(maxItems int) *Cart {
	return &Cart{maxItems: maxItems}
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Lines returns a copy; callers never see internal state.
func (c *Cart) Lines() []model.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) CountProduct(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countLocked(productID)
}

func (c *Cart) countLocked(productID string) int {
	n := 0
	for _, line := range c.lines {
		if line.ProductID == productID {
			n++
		}
	}
	return n
}

// Push appends a line, enforcing only the order ceiling. Per-product rules
// are the caller's job (they need the snapshot).
func (c *Cart) Push(line model.OrderLine) AddResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) >= c.maxItems {
		return AddResult{Success: false, Reason: ReasonLimit}
	}
	c.lines = append(c.lines, line)
	return AddResult{Success: true}
}

// Remove takes out the line at index, or the last line when index is -1.
// Returns nil when the cart is empty or the index is out of range. Removal
// only loosens constraints, so nothing is re-checked.
func (c *Cart) Remove(index int) *model.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return nil
	}
	if index == -1 {
		index = len(c.lines) - 1
	}
	if index < 0 || index >= len(c.lines) {
		return nil
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return &removed
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
