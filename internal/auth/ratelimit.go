package auth

import (
	"sync"
	"time"
)

// RateLimiter throttles maintainer login attempts. Failures are counted per
// client IP and username inside a fixed window; reaching the limit locks
// that pair out for LockoutDuration.
type RateLimiter struct {
	mu       sync.Mutex
	failures map[string]*failureWindow
	cfg      RateLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type failureWindow struct {
	count       int
	startedAt   time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Failures before lockout (default: 5)
	WindowDuration  time.Duration // Window for counting failures (default: 15m)
	LockoutDuration time.Duration // Lockout length (default: 30m)
	CleanupInterval time.Duration // How often stale entries are dropped (default: 5m)
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop when done.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		failures: make(map[string]*failureWindow),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func limiterKey(ip, username string) string {
	return ip + "|" + username
}

// Allow reports whether another attempt may be made and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[limiterKey(ip, username)]
	if !ok {
		return true, 0
	}
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	if now.Sub(w.startedAt) > rl.cfg.WindowDuration {
		return true, 0
	}
	return w.count < rl.cfg.MaxAttempts, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a
// lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	now := rl.now()
	key := limiterKey(ip, username)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[key]
	if !ok || now.Sub(w.startedAt) > rl.cfg.WindowDuration {
		w = &failureWindow{startedAt: now}
		rl.failures[key] = w
	}

	w.count++
	if w.count >= rl.cfg.MaxAttempts {
		w.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true, rl.cfg.LockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets earlier failures for the pair.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.failures, limiterKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.failures {
		if now.Sub(w.startedAt) > rl.cfg.WindowDuration && !now.Before(w.lockedUntil) {
			delete(rl.failures, key)
		}
	}
}
