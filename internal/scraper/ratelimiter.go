// internal/scraper/ratelimiter.go
package scraper

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Adaptation behavior constants
const (
	ErrorRateMultiplier      = 3.0  // up to 4x slower at 100% error rate
	ErrorRateThreshold       = 0.1  // error rate below which the base rate holds
	ConsecutiveErrLimit      = 3    // consecutive errors before the extra penalty
	MaxConsecutiveMultiplier = 10.0 // cap on the consecutive error penalty
	MinChangeThreshold       = 0.1  // ignore rate changes smaller than 10%
	outcomeWindow            = 50   // counters are halved past this many outcomes
)

// HostRateLimiter keeps one token bucket per host and slows a host down
// while it answers with throttling or server errors. Safe for concurrent use.
type HostRateLimiter struct {
	mu        sync.Mutex
	baseRate  float64
	baseBurst int
	hosts     map[string]*hostLimit
}

type hostLimit struct {
	limiter         *rate.Limiter
	currentRate     float64
	successCount    int
	errorCount      int
	consecutiveErrs int
}

// HostRateStats is a snapshot of one host's limiter.
type HostRateStats struct {
	Rate            float64
	Burst           int
	Successes       int
	Errors          int
	ConsecutiveErrs int
}

// NewHostRateLimiter creates a limiter allowing requestsPerSecond with burst
// per host while the host is healthy.
func NewHostRateLimiter(requestsPerSecond float64, burst int) *HostRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostRateLimiter{
		baseRate:  requestsPerSecond,
		baseBurst: burst,
		hosts:     make(map[string]*hostLimit),
	}
}

func (hl *HostRateLimiter) get(host string) *hostLimit {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	h, ok := hl.hosts[host]
	if !ok {
		h = &hostLimit{
			limiter:     rate.NewLimiter(rate.Limit(hl.baseRate), hl.baseBurst),
			currentRate: hl.baseRate,
		}
		hl.hosts[host] = h
	}
	return h
}

// Wait blocks until host may receive another request.
func (hl *HostRateLimiter) Wait(ctx context.Context, host string) error {
	return hl.get(host).limiter.Wait(ctx)
}

// ReportSuccess records a successful response from host.
func (hl *HostRateLimiter) ReportSuccess(host string) {
	h := hl.get(host)
	hl.mu.Lock()
	defer hl.mu.Unlock()
	h.successCount++
	h.consecutiveErrs = 0
	hl.adapt(h)
}

// ReportError records a throttled or failed response from host.
func (hl *HostRateLimiter) ReportError(host string) {
	h := hl.get(host)
	hl.mu.Lock()
	defer hl.mu.Unlock()
	h.errorCount++
	h.consecutiveErrs++
	hl.adapt(h)
}

// adapt recomputes the host rate from its error history. Must be called
// with hl.mu held.
func (hl *HostRateLimiter) adapt(h *hostLimit) {
	total := h.successCount + h.errorCount
	if total > outcomeWindow {
		h.successCount /= 2
		h.errorCount /= 2
		total = h.successCount + h.errorCount
	}
	if total == 0 {
		return
	}

	multiplier := 1.0
	errorRate := float64(h.errorCount) / float64(total)
	if errorRate > ErrorRateThreshold {
		multiplier = 1 + errorRate*ErrorRateMultiplier
	}
	if h.consecutiveErrs > ConsecutiveErrLimit {
		ratio := float64(h.consecutiveErrs) / float64(ConsecutiveErrLimit)
		multiplier *= math.Min(ratio, MaxConsecutiveMultiplier)
	}

	newRate := hl.baseRate / multiplier
	if math.Abs(newRate-h.currentRate)/h.currentRate < MinChangeThreshold {
		return
	}
	h.currentRate = newRate
	h.limiter.SetLimit(rate.Limit(newRate))

	burst := hl.baseBurst
	if multiplier > 1 {
		burst = int(math.Max(1, float64(hl.baseBurst)/multiplier))
	}
	h.limiter.SetBurst(burst)
}

// Stats returns the current state for host, and false if host was never seen.
func (hl *HostRateLimiter) Stats(host string) (HostRateStats, bool) {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	h, ok := hl.hosts[host]
	if !ok {
		return HostRateStats{}, false
	}
	return HostRateStats{
		Rate:            h.currentRate,
		Burst:           h.limiter.Burst(),
		Successes:       h.successCount,
		Errors:          h.errorCount,
		ConsecutiveErrs: h.consecutiveErrs,
	}, true
}
