// Package services provides business logic and orchestration services.
//
// This file resolves installment policies by name. Each policy is a strategy
// from internal/core; configuration selects them through the registries below.

package services

import (
	"fmt"
	"strings"

	"github.com/werioliveira/card-management/internal/core"
)

const (
	DateRollover = "rollover"
	DateClamp    = "clamp"

	SplitDropRemainder = "drop-remainder"
	SplitLastAbsorbs   = "last-absorbs"
)

// dateStrategies maps policy names to month advancers.
var dateStrategies = map[string]core.MonthAdvancer{
	DateRollover: core.RolloverAdvancer{},
	DateClamp:    core.ClampAdvancer{},
}

// splitStrategies maps policy names to split policies.
var splitStrategies = map[string]core.SplitPolicy{
	SplitDropRemainder: core.DropRemainder{},
	SplitLastAbsorbs:   core.LastAbsorbsRemainder{},
}

// GetMonthAdvancer returns the advancer registered under name.
// An empty name selects rollover.
func GetMonthAdvancer(name string) (core.MonthAdvancer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DateRollover
	}
	a, ok := dateStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown installment date policy: %s", name)
	}
	return a, nil
}

// GetSplitPolicy returns the split policy registered under name.
// An empty name selects drop-remainder.
func GetSplitPolicy(name string) (core.SplitPolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = SplitDropRemainder
	}
	p, ok := splitStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown installment split policy: %s", name)
	}
	return p, nil
}

// RegisterMonthAdvancer adds or replaces a named date policy.
func RegisterMonthAdvancer(name string, a core.MonthAdvancer) {
	dateStrategies[name] = a
}

// RegisterSplitPolicy adds or replaces a named split policy.
func RegisterSplitPolicy(name string, p core.SplitPolicy) {
	splitStrategies[name] = p
}

// ResolveSchedule builds a schedule from the configured policy names.
func ResolveSchedule(datePolicy, splitPolicy string) (core.Schedule, error) {
	a, err := GetMonthAdvancer(datePolicy)
	if err != nil {
		return core.Schedule{}, err
	}
	p, err := GetSplitPolicy(splitPolicy)
	if err != nil {
		return core.Schedule{}, err
	}
	return core.Schedule{Advancer: a, Split: p}, nil
}
