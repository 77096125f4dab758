package cache

import (
	"context"
	"sync"

	"github.com/cleared-dev/recon/internal/model"
)

// Memory is a process-local Cache.
type Memory struct {
	mu   sync.RWMutex
	maps map[string]model.ClassificationMap
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{maps: make(map[string]model.ClassificationMap)}
}

func (c *Memory) Get(_ context.Context, tenant string) (model.ClassificationMap, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.maps[tenant]
	if !ok {
		return nil, false, nil
	}
	return m.Clone(), true, nil
}

func (c *Memory) Put(_ context.Context, tenant string, m model.ClassificationMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maps[tenant] = m.Clone()
	return nil
}

func (c *Memory) Invalidate(_ context.Context, tenant string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.maps, tenant)
	return nil
}
