package core

// mutation_limiter.go bounds how many bulk deletes run at once.
//
// The limiter is a semaphore: when every slot is taken, a new request waits
// up to maxWait before failing with ErrTooManyMutations. WaitForDrain lets
// shutdown block until running deletes finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyMutations is returned when all mutation slots are occupied and
// the wait timeout expires. Clients should retry after a short delay.
var ErrTooManyMutations = errors.New("too many concurrent mutations, please try again later")

// DefaultMaxConcurrentMutations is the default limit for parallel bulk deletes.
const DefaultMaxConcurrentMutations = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// MutationLimiter controls concurrent bulk mutations using a semaphore.
type MutationLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewMutationLimiter creates a limiter that allows at most maxConcurrent
// simultaneous mutations. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyMutations.
func NewMutationLimiter(maxConcurrent int, maxWait time.Duration) *MutationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentMutations
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &MutationLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a mutation slot.
// The caller MUST call Release() once the mutation completes (use defer).
func (l *MutationLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Caller cancellation wins over our own wait timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyMutations
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *MutationLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *MutationLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running mutations.
func (l *MutationLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent mutations.
func (l *MutationLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *MutationLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all running mutations complete or ctx is done.
func (l *MutationLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// MutationLimiterStatus is a snapshot of the limiter's state.
type MutationLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *MutationLimiter) Status() MutationLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return MutationLimiterStatus{
		Active:        active,
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
