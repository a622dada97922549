package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/machshop/spc"
)

// Memory is an in-process store used in tests and single-node
// deployments without Redis.  A single mutex serializes writers, which
// satisfies the per-parameter write discipline trivially.
type Memory struct {
	mu         sync.RWMutex
	configs    map[string]spc.Config
	violations map[string][]ViolationRecord
}

var _ Store = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		configs:    make(map[string]spc.Config),
		violations: make(map[string][]ViolationRecord),
	}
}

func (m *Memory) SaveConfig(_ context.Context, cfg *spc.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.ParameterID] = *cfg
	return nil
}

func (m *Memory) GetConfig(_ context.Context, parameterID string) (*spc.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[parameterID]
	if !ok {
		return nil, fmt.Errorf("parameter %s: %w", parameterID, ErrNotFound)
	}
	out := cfg
	return &out, nil
}

func (m *Memory) Deactivate(_ context.Context, parameterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[parameterID]
	if !ok {
		return fmt.Errorf("parameter %s: %w", parameterID, ErrNotFound)
	}
	cfg.Active = false
	m.configs[parameterID] = cfg
	return nil
}

func (m *Memory) SaveViolations(_ context.Context, records []ViolationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.violations[rec.ParameterID] = append(m.violations[rec.ParameterID], rec)
	}
	return nil
}

func (m *Memory) RecentViolations(_ context.Context, parameterID string, limit int) ([]ViolationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.violations[parameterID]
	out := make([]ViolationRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
