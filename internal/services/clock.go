package services

import "time"

// Clock abstracts time.Now so subscription expiry math is testable
// against fixed instants.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns the wall clock used in production wiring.
func NewRealClock() Clock { return realClock{} }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }
