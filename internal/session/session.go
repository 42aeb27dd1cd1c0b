package session

import (
	"sync"

	"github.com/flangoapp/flango-pos-service/internal/model"
)

// Session holds the current selection state of one POS terminal: the child
// being served, the logged-in operator and the club. It replaces ambient
// globals; everything that needs the selection gets this object injected.
type Session struct {
	mu       sync.RWMutex
	customer *model.Customer
	admin    *model.Admin
	clubID   string
}

func New(clubID string) *Session {
	return &Session{clubID: clubID}
}

// CurrentCustomer returns a copy of the selected customer. Callers get a
// consistent view; MirrorBalance can never race with a pointer handed out
// earlier.
func (s *Session) CurrentCustomer() *model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

func (s *Session) SetCurrentCustomer(c *model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = c
}

// ClearCurrentCustomer deselects the child after checkout.
func (s *Session) ClearCurrentCustomer() {
	s.SetCurrentCustomer(nil)
}

// MirrorBalance applies a locally computed balance to the selected customer,
// if the event concerns them. The ledger of record stays remote.
func (s *Session) MirrorBalance(userID string, newBalance float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil || s.customer.ID != userID {
		return false
	}
	s.customer.Balance = newBalance
	return true
}

func (s *Session) CurrentSessionAdmin() *model.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

func (s *Session) SetCurrentSessionAdmin(a *model.Admin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = a
}

func (s *Session) ClubID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clubID
}
