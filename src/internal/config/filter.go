// FILE: src/internal/config/filter.go
package config

import (
	"fmt"
	"regexp"
)

// FilterType decides whether matching events pass or are dropped
type FilterType string

const (
	FilterTypeInclude FilterType = "include"
	FilterTypeExclude FilterType = "exclude"
)

// FilterLogic combines the patterns of one filter
type FilterLogic string

const (
	FilterLogicOr  FilterLogic = "or"
	FilterLogicAnd FilterLogic = "and"
)

// FilterConfig is a regex filter applied before an event reaches a sink
type FilterConfig struct {
	Type     FilterType  `toml:"type"`
	Logic    FilterLogic `toml:"logic"`
	Patterns []string    `toml:"patterns"`
}

func validateFilters(sinkName string, filters []FilterConfig) error {
	for i := range filters {
		if err := validateFilter(sinkName, i, &filters[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateFilter(sinkName string, filterIndex int, cfg *FilterConfig) error {
	switch cfg.Type {
	case FilterTypeInclude, FilterTypeExclude, "":
	default:
		return fmt.Errorf("%s filter[%d]: invalid type '%s' (must be 'include' or 'exclude')",
			sinkName, filterIndex, cfg.Type)
	}

	switch cfg.Logic {
	case FilterLogicOr, FilterLogicAnd, "":
	default:
		return fmt.Errorf("%s filter[%d]: invalid logic '%s' (must be 'or' or 'and')",
			sinkName, filterIndex, cfg.Logic)
	}

	for i, pattern := range cfg.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%s filter[%d] pattern[%d] '%s': invalid regex: %w",
				sinkName, filterIndex, i, pattern, err)
		}
	}

	return nil
}
