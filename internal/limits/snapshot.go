package limits

import (
	"context"
	"sync"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"go.uber.org/zap"
)

// SnapshotHolder memoizes one limit snapshot per selected child and guards
// against overlapping refreshes: each refresh takes a generation number at
// start, and a result is only applied while no newer refresh has started.
// In-flight fetches are never cancelled, their results are just discarded.
type SnapshotHolder struct {
	uc       UseCase
	logger   logger.ZapLogger
	debounce time.Duration

	mu         sync.Mutex
	childID    string
	clubID     string
	snap       *model.LimitSnapshot
	generation uint64
	timer      *time.Timer
	onApply    func(*model.LimitSnapshot)
}

func NewSnapshotHolder(uc UseCase, log logger.ZapLogger, debounce time.Duration) *SnapshotHolder {
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}
	return &SnapshotHolder{uc: uc, logger: log, debounce: debounce}
}

// SetOnApply registers the consumer of fresh snapshots (the grid lock pass).
func (h *SnapshotHolder) SetOnApply(fn func(*model.LimitSnapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onApply = fn
}

// SetChild switches the holder to another child and drops the old snapshot.
func (h *SnapshotHolder) SetChild(childID, clubID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.childID == childID && h.clubID == clubID {
		return
	}
	h.childID = childID
	h.clubID = clubID
	h.snap = nil
	h.generation++
	h.stopTimerLocked()
}

// Invalidate must be called after any sale, deposit or balance edit. It also
// outdates whatever refresh is currently in flight.
func (h *SnapshotHolder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap = nil
	h.generation++
}

// Get returns the memoized snapshot, fetching on demand.
func (h *SnapshotHolder) Get(ctx context.Context) (*model.LimitSnapshot, error) {
	h.mu.Lock()
	if h.childID == "" {
		h.mu.Unlock()
		return nil, nil
	}
	if h.snap != nil {
		snap := h.snap
		h.mu.Unlock()
		return snap, nil
	}
	h.generation++
	gen := h.generation
	childID, clubID := h.childID, h.clubID
	h.mu.Unlock()

	snap, err := h.uc.SnapshotForChild(ctx, childID, clubID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation {
		// A newer refresh started (or an invalidation happened) while this
		// one was in flight; its result must not overwrite anything.
		return snap, nil
	}
	h.snap = snap
	return snap, nil
}

// RequestRefresh coalesces rapid cart mutations into a single recomputation.
// unlockOnly skips the refetch: removals can only loosen limits, so the
// cached snapshot is re-delivered as-is.
func (h *SnapshotHolder) RequestRefresh(unlockOnly bool) {
	h.mu.Lock()
	if h.childID == "" {
		h.mu.Unlock()
		return
	}
	if unlockOnly && h.snap != nil {
		snap, fn := h.snap, h.onApply
		h.mu.Unlock()
		if fn != nil {
			fn(snap)
		}
		return
	}

	h.stopTimerLocked()
	h.timer = time.AfterFunc(h.debounce, h.refresh)
	h.mu.Unlock()
}

func (h *SnapshotHolder) refresh() {
	h.mu.Lock()
	h.snap = nil
	h.generation++
	gen := h.generation
	childID, clubID := h.childID, h.clubID
	fn := h.onApply
	h.mu.Unlock()

	if childID == "" {
		return
	}

	snap, err := h.uc.SnapshotForChild(context.Background(), childID, clubID)
	if err != nil {
		h.logger.Error("snapshot refresh failed",
			zap.String("child_id", childID), zap.Error(err))
		return
	}

	h.mu.Lock()
	stale := gen != h.generation
	if !stale {
		h.snap = snap
	}
	h.mu.Unlock()

	if !stale && fn != nil {
		fn(snap)
	}
}

func (h *SnapshotHolder) stopTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
