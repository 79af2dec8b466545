package core

import (
	"fmt"
	"sync"
)

// CallMeter counts generative-backend calls made on behalf of one request.
// With max == 0 it is a plain counter; with a positive max, Increment rejects
// calls past the budget.
type CallMeter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallMeter creates a meter. If max == 0 the meter never rejects.
func NewCallMeter(max int) *CallMeter {
	return &CallMeter{max: max}
}

// Increment records one call and returns an error if the budget is exceeded.
func (m *CallMeter) Increment() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count++
	if m.max > 0 && m.count > m.max {
		return fmt.Errorf("exceeded max backend calls: %d", m.max)
	}

	return nil
}

// Count returns the number of calls recorded so far.
func (m *CallMeter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.count
}

// Remaining returns how many calls are left before the budget, or -1 when
// the meter is unbounded.
func (m *CallMeter) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max == 0 {
		return -1
	}

	return m.max - m.count
}
