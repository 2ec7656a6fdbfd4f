// Package repository stores battle summaries for progression.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
)

// ErrResultExists is returned when a battle summary is saved twice.
var ErrResultExists = errors.New("battle result already recorded")

// ResultRepository persists finished battles.
type ResultRepository interface {
	Save(ctx context.Context, summary battle.Summary) error
	Recent(ctx context.Context, limit int) ([]battle.Summary, error)
}

// MemoryResultRepository keeps results in process, newest last.
type MemoryResultRepository struct {
	mu      sync.RWMutex
	results []battle.Summary
	seen    map[string]struct{}
}

// NewMemoryResultRepository creates an empty in-process store.
func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{seen: make(map[string]struct{})}
}

func (r *MemoryResultRepository) Save(_ context.Context, summary battle.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[summary.BattleID]; ok {
		return ErrResultExists
	}
	r.seen[summary.BattleID] = struct{}{}
	r.results = append(r.results, summary)
	return nil
}

// Recent returns up to limit results, newest first.
func (r *MemoryResultRepository) Recent(_ context.Context, limit int) ([]battle.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.results) {
		limit = len(r.results)
	}
	out := make([]battle.Summary, 0, limit)
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.results[i])
	}
	return out, nil
}
