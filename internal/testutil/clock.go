package testutil

import (
	"fmt"
	"sync"
	"time"

	"shelf-go/internal/shelf"
)

// FixedTime is where FixedClock starts: 2024-01-15 10:30:00 UTC.
var FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a settable shelf.Clock. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ shelf.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to FixedTime.
func FixedClock() *StubClock {
	return NewStubClock(FixedTime)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Millis is the current time as it appears in CreatedAt fields.
func (c *StubClock) Millis() int64 {
	return shelf.Millis(c)
}

// StubIDGenerator hands out prefix+"1", prefix+"2", and so on. The default
// prefix is "id-", so a fresh repository's default category is "id-1".
type StubIDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued int
}

var _ shelf.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return NewPrefixedIDGenerator("id-")
}

func NewPrefixedIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return fmt.Sprintf("%s%d", g.prefix, g.issued)
}

// Issued reports how many ids have been handed out.
func (g *StubIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}
