package mcp

import (
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// historySize is how many completed analyses the server keeps for resources.
const historySize = 32

// history keeps the most recent analyses in memory, newest first.
// Nothing is persisted: a restart starts empty.
type history struct {
	mu    sync.RWMutex
	max   int
	items []*domain.Analysis
}

func newHistory(max int) *history {
	return &history{max: max}
}

func (h *history) add(a *domain.Analysis) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append([]*domain.Analysis{a}, h.items...)
	if len(h.items) > h.max {
		h.items[len(h.items)-1] = nil
		h.items = h.items[:h.max]
	}
}

func (h *history) list() []*domain.Analysis {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*domain.Analysis, len(h.items))
	copy(out, h.items)
	return out
}

func (h *history) get(id string) (*domain.Analysis, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, a := range h.items {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}
