// Package allocator hands out KaSuSIds, the strictly increasing numbers that
// tie a printed personalised copy to a student.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Start is the counter value written on first use; the first id handed out is Start+1.
const Start int64 = 100000

// ErrStorageUnavailable is returned when the durable counter cannot be read or written.
var ErrStorageUnavailable = errors.New("kasusid counter storage unavailable")

// Allocator returns a new identifier per call, strictly greater than every
// identifier returned before.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// Memory is a process-local Allocator.
type Memory struct {
	mu      sync.Mutex
	current int64
	started bool
}

// NewMemory creates a Memory allocator that behaves like a fresh counter row.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryFrom creates a Memory allocator whose next id is current+1.
func NewMemoryFrom(current int64) *Memory {
	return &Memory{current: current, started: true}
}

func (m *Memory) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		m.current = Start
		m.started = true
	}
	m.current++
	return m.current, nil
}

// Current returns the last handed out value (Start when unused).
func (m *Memory) Current() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return Start
	}
	return m.current
}
