// FILE: src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"github.com/3BougsMedia/logger/src/internal/config"
	"github.com/3BougsMedia/logger/src/internal/core"

	"github.com/lixenwraith/log"
)

// Chain applies filters in order; an event must pass all of them.
type Chain struct {
	filters []*Filter
	logger  *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalPassed    atomic.Uint64
}

// NewChain builds a chain. It returns nil for an empty configuration, and a
// nil chain passes everything.
func NewChain(configs []config.FilterConfig, logger *log.Logger) (*Chain, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	chain := &Chain{
		filters: make([]*Filter, 0, len(configs)),
		logger:  logger,
	}

	for i, cfg := range configs {
		filter, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		chain.filters = append(chain.filters, filter)
	}

	logger.Debug("msg", "Filter chain created",
		"component", "filter_chain",
		"filter_count", len(configs))
	return chain, nil
}

// Apply runs an event through all filters in the chain
func (c *Chain) Apply(event core.LogEvent) bool {
	if c == nil {
		return true
	}
	c.totalProcessed.Add(1)

	for i, filter := range c.filters {
		if !filter.Apply(event) {
			c.logger.Debug("msg", "Event filtered out",
				"component", "filter_chain",
				"filter_index", i,
				"filter_type", filter.config.Type)
			return false
		}
	}

	c.totalPassed.Add(1)
	return true
}

// GetStats returns aggregated statistics for the chain
func (c *Chain) GetStats() map[string]any {
	if c == nil {
		return nil
	}

	filterStats := make([]map[string]any, len(c.filters))
	for i, filter := range c.filters {
		filterStats[i] = filter.GetStats()
	}

	return map[string]any{
		"filter_count":    len(c.filters),
		"total_processed": c.totalProcessed.Load(),
		"total_passed":    c.totalPassed.Load(),
		"filters":         filterStats,
	}
}
