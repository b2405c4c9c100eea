package main

import (
	"time"
)

// Clocker provides the current time. Handlers, services and logs
// read time through it so tests can pin it.
type Clocker interface {
	Now() time.Time
}

// Clock reads the wall clock in a fixed location: UTC in
// production and the host timezone otherwise.
type Clock struct {
	loc *time.Location
}

func NewClock(isProd bool) *Clock {
	loc := time.Local
	if isProd {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// zapClock lets the logger stamp entries with a Clocker.
type zapClock struct {
	Clocker
}

func (zapClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}
