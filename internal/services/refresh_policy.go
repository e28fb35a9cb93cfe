// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for snapshot refresh decisions.
// Each policy (age, always, never) has its own checker that encapsulates
// when a stored snapshot should be re-fetched from the timesheet service.
package services

import (
	"fmt"
	"time"
)

// RefreshChecker is the strategy interface for deciding whether a stored
// snapshot should be refreshed.
type RefreshChecker interface {
	// ShouldRefresh returns true if a snapshot fetched at fetchedAt should be
	// re-fetched at now, given the configured TTL.
	ShouldRefresh(fetchedAt, now time.Time, ttl time.Duration) bool
}

// AgeChecker refreshes snapshots once they are older than the TTL.
type AgeChecker struct{}

// ShouldRefresh returns true if the snapshot is missing or older than ttl.
func (AgeChecker) ShouldRefresh(fetchedAt, now time.Time, ttl time.Duration) bool {
	if fetchedAt.IsZero() {
		return true
	}
	return now.Sub(fetchedAt) >= ttl
}

// AlwaysChecker refreshes on every read.
type AlwaysChecker struct{}

func (AlwaysChecker) ShouldRefresh(_, _ time.Time, _ time.Duration) bool {
	return true
}

// NeverChecker leaves refreshing entirely to the periodic worker scan.
type NeverChecker struct{}

func (NeverChecker) ShouldRefresh(_, _ time.Time, _ time.Duration) bool {
	return false
}

// refreshStrategies maps policy names to their corresponding checkers.
var refreshStrategies = map[string]RefreshChecker{
	"age":    AgeChecker{},
	"always": AlwaysChecker{},
	"never":  NeverChecker{},
}

// GetRefreshChecker returns the checker for a policy name.
// Returns an error if the policy is not supported.
func GetRefreshChecker(policy string) (RefreshChecker, error) {
	checker, ok := refreshStrategies[policy]
	if !ok {
		return nil, fmt.Errorf("unknown refresh policy: %s", policy)
	}
	return checker, nil
}

// RegisterRefreshChecker allows registering custom checkers for new policy names.
func RegisterRefreshChecker(policy string, checker RefreshChecker) {
	refreshStrategies[policy] = checker
}
