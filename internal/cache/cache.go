// Package cache stores each tenant's classification map so a chart of
// accounts is classified at most once until it is replaced.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cleared-dev/recon/internal/model"
)

// Cache is the storage contract for classification maps.
type Cache interface {
	// Get returns the stored map and true, or false when absent.
	Get(ctx context.Context, tenant string) (model.ClassificationMap, bool, error)
	// Put stores m for tenant, replacing any previous map.
	Put(ctx context.Context, tenant string, m model.ClassificationMap) error
	// Invalidate removes the stored map. Removing an absent map is not an error.
	Invalidate(ctx context.Context, tenant string) error
}

// Backend names accepted by configuration.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Encode renders m as indented JSON with sorted keys.
func Encode(m model.ClassificationMap) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding classification map: %w", err)
	}
	return data, nil
}

// Decode parses a stored map and rejects labels outside the fixed set.
func Decode(data []byte) (model.ClassificationMap, error) {
	var m model.ClassificationMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding classification map: %w", err)
	}
	for code, t := range m {
		if !t.Valid() {
			return nil, fmt.Errorf("decoding classification map: code %q has unknown type %q", code, t)
		}
	}
	if m == nil {
		m = model.ClassificationMap{}
	}
	return m, nil
}
