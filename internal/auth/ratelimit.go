package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/bookworm/internal/config"
)

// RateLimiter counts failed login attempts per client IP and locks the IP
// out once the limit is reached within the window. There is only one account,
// so the IP is the whole key.
type RateLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// NewRateLimiter applies defaults of 5 attempts per 15m and a 30m lockout.
func NewRateLimiter(cfg config.Auth) *RateLimiter {
	rl := &RateLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxLoginAttempts,
		windowDuration:  cfg.RateLimitWindow,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
		stop:            make(chan struct{}),
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.windowDuration <= 0 {
		rl.windowDuration = 15 * time.Minute
	}
	if rl.lockoutDuration <= 0 {
		rl.lockoutDuration = 30 * time.Minute
	}

	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Stop ends the background cleanup. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether ip may attempt a login and, if not, for how long it is locked out.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[ip]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	if now.Sub(record.firstAttempt) > rl.windowDuration || record.count < rl.maxAttempts {
		return true, 0
	}
	return false, rl.lockoutDuration
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[ip]
	if !ok || now.Sub(record.firstAttempt) > rl.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[ip] = record
	}

	record.count++
	if record.count >= rl.maxAttempts {
		record.lockedUntil = now.Add(rl.lockoutDuration)
		return true, rl.lockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets the failures of ip.
func (rl *RateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	delete(rl.attempts, ip)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
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

	for ip, record := range rl.attempts {
		if now.Sub(record.firstAttempt) > rl.windowDuration && !now.Before(record.lockedUntil) {
			delete(rl.attempts, ip)
		}
	}
}
