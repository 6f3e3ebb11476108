// Package clock makes "now" injectable so dates can be pinned in tests.
package clock

import "time"

const dateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func (c DefaultClock) Now() time.Time {
	return time.Now()
}

type TestClock struct {
	now time.Time
}

func NewTestClockAt(date time.Time) *TestClock {
	return &TestClock{
		now: date,
	}
}

func (c *TestClock) FastForward(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func (c *TestClock) Now() time.Time {
	return c.now
}

// Today returns the current calendar date of c as YYYY-MM-DD.
func Today(c Clock) string {
	if c == nil {
		c = DefaultClock{}
	}
	return c.Now().Format(dateLayout)
}
