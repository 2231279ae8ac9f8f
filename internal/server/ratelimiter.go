package server

import (
	"sync"
	"time"
)

// rateLimitState tracks request timestamps for one client.
type rateLimitState struct {
	requests []int64 // unix milliseconds
}

// RateLimiter implements per-IP rate limiting with a one-minute sliding
// window.
type RateLimiter struct {
	limits            map[string]*rateLimitState
	maxRequestsPerMin int
	mu                sync.RWMutex
	cleanupInterval   time.Duration
	stopCleanup       chan struct{}
	stopOnce          sync.Once
}

// NewRateLimiter creates a rate limiter allowing maxRequestsPerMinute
// requests per client.
func NewRateLimiter(maxRequestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		limits:            make(map[string]*rateLimitState),
		maxRequestsPerMin: maxRequestsPerMinute,
		cleanupInterval:   5 * time.Minute,
		stopCleanup:       make(chan struct{}),
	}

	go rl.cleanupLoop()
	return rl
}

// CheckLimit reports whether a request from the given IP is allowed and
// records it when so.
func (rl *RateLimiter) CheckLimit(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()

	state, exists := rl.limits[ip]
	if !exists {
		state = &rateLimitState{}
		rl.limits[ip] = state
	}

	valid := state.requests[:0]
	for _, reqTime := range state.requests {
		if now-reqTime < 60000 {
			valid = append(valid, reqTime)
		}
	}
	state.requests = valid

	if len(state.requests) >= rl.maxRequestsPerMin {
		return false
	}

	state.requests = append(state.requests, now)
	return true
}

// GetRetryAfter returns seconds until the oldest recorded request leaves
// the window.
func (rl *RateLimiter) GetRetryAfter(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	state, exists := rl.limits[ip]
	if !exists || len(state.requests) == 0 {
		return 0
	}

	now := time.Now().UnixMilli()
	retryAfterMs := 60000 - (now - state.requests[0])
	if retryAfterMs < 0 {
		return 0
	}
	return int((retryAfterMs + 999) / 1000)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()
	for ip, state := range rl.limits {
		valid := state.requests[:0]
		for _, reqTime := range state.requests {
			if now-reqTime < 60000 {
				valid = append(valid, reqTime)
			}
		}
		if len(valid) == 0 {
			delete(rl.limits, ip)
		} else {
			state.requests = valid
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
