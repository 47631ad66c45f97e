// Package util provides utility functions for the MealNudge application.
package util

import (
	"math/rand/v2"
	"time"
)

// Jitter returns base plus a uniform random duration in [0, spread).
// Used to stagger near-immediate notifications so bursts of activity events
// do not all present at the same instant. Non-positive spread returns base.
func Jitter(base, spread time.Duration) time.Duration {
	if spread <= 0 {
		return base
	}
	return base + time.Duration(rand.Int64N(int64(spread)))
}
