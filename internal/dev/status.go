package dev

import (
	"sync"
	"time"
)

// Status tracks the outcome of the most recent build for the dev server.
// It satisfies server.BuildStatus.
type Status struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool // true if at least one successful build exists
	builds       int
	lastBuild    time.Time
}

// NewStatus returns an empty status; the server reports pending until the
// first build finishes.
func NewStatus() *Status { return &Status{} }

func (s *Status) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	s.builds++
	s.lastBuild = time.Now()
}

func (s *Status) setSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
	s.hasGoodBuild = true
	s.builds++
	s.lastBuild = time.Now()
}

// GetStatus reports the last error and whether a good build exists.
func (s *Status) GetStatus() (hasError bool, err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError != nil, s.lastError, s.hasGoodBuild
}

// Builds returns the number of finished builds.
func (s *Status) Builds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builds
}
