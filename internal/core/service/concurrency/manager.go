// Package concurrency implements the process-wide admission control for
// ingestion jobs (C9): a counting semaphore bounding how many jobs may run
// at once, with a read-only load snapshot for health reporting.
package concurrency

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Token represents a held concurrency slot; it must be released exactly
// once via Manager.Release.
type Token struct {
	weight int64
}

// Load is a read-only snapshot of current admission state.
type Load struct {
	Active         int
	Max            int
	UtilizationPct float64
}

// Manager is a fair counting semaphore bounding the number of concurrently
// running ingestion jobs. The admission step (ingestion pipeline stage 1)
// is the only entry point that consults it; every other handler is
// non-blocking.
type Manager struct {
	sem    *semaphore.Weighted
	max    int64
	active atomic.Int64
}

// NewManager creates a Manager with the given capacity.
func NewManager(maxConcurrent int) *Manager {
	return &Manager{
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
		max: int64(maxConcurrent),
	}
}

// TryAcquire attempts to reserve one concurrency slot without blocking. It
// returns ok=false immediately if the manager is at capacity; callers
// denied admission surface a BusySignal to their caller rather than
// waiting.
func (m *Manager) TryAcquire() (token Token, load Load, ok bool) {
	if !m.sem.TryAcquire(1) {
		return Token{}, m.Load(), false
	}
	m.active.Add(1)
	return Token{weight: 1}, m.Load(), true
}

// Release returns a previously acquired slot.
func (m *Manager) Release(token Token) {
	if token.weight == 0 {
		return
	}
	m.sem.Release(token.weight)
	m.active.Add(-token.weight)
}

// Load reports current utilization.
func (m *Manager) Load() Load {
	active := m.active.Load()
	pct := 0.0
	if m.max > 0 {
		pct = float64(active) / float64(m.max) * 100
	}
	return Load{Active: int(active), Max: int(m.max), UtilizationPct: pct}
}
