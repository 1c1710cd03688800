// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck is one named dependency check. A failing critical check makes
// the service unhealthy; a failing optional one only degrades it.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// CheckResult is the outcome of one HealthCheck.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Critical bool          `json:"critical"`
}

// SystemHealth represents overall system health information
type SystemHealth struct {
	Status         HealthStatus           `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	Version        string                 `json:"version,omitempty"`
	Uptime         string                 `json:"uptime"`
	GoroutineCount int                    `json:"goroutine_count"`
	Checks         map[string]CheckResult `json:"checks,omitempty"`
}

// HealthManager runs registered checks on demand.
type HealthManager struct {
	mu      sync.RWMutex
	checks  []HealthCheck
	timeout time.Duration
	version string
	metrics *MetricsManager
	started time.Time
}

// NewHealthManager creates a health manager. Each check gets timeout; zero
// means five seconds. metrics may be nil.
func NewHealthManager(version string, timeout time.Duration, metrics *MetricsManager) *HealthManager {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HealthManager{
		timeout: timeout,
		version: version,
		metrics: metrics,
		started: time.Now(),
	}
}

// RegisterCheck adds or replaces a check by name.
func (hm *HealthManager) RegisterCheck(check HealthCheck) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	for i, c := range hm.checks {
		if c.Name == check.Name {
			hm.checks[i] = check
			return
		}
	}
	hm.checks = append(hm.checks, check)
	sort.Slice(hm.checks, func(i, j int) bool { return hm.checks[i].Name < hm.checks[j].Name })
}

// GetHealth runs every check concurrently and aggregates the result.
func (hm *HealthManager) GetHealth(ctx context.Context) SystemHealth {
	hm.mu.RLock()
	checks := append([]HealthCheck(nil), hm.checks...)
	hm.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, c HealthCheck) {
			defer wg.Done()
			results[i] = hm.runCheck(ctx, c)
		}(i, check)
	}
	wg.Wait()

	hm.metrics.UpdateGoroutineCount()

	health := SystemHealth{
		Status:         HealthStatusHealthy,
		Timestamp:      time.Now(),
		Version:        hm.version,
		Uptime:         time.Since(hm.started).Round(time.Second).String(),
		GoroutineCount: runtime.NumGoroutine(),
	}
	if len(checks) > 0 {
		health.Checks = make(map[string]CheckResult, len(checks))
	}
	for i, c := range checks {
		r := results[i]
		health.Checks[c.Name] = r
		if r.Status == HealthStatusHealthy {
			continue
		}
		if c.Critical {
			health.Status = HealthStatusUnhealthy
		} else if health.Status == HealthStatusHealthy {
			health.Status = HealthStatusDegraded
		}
	}
	return health
}

func (hm *HealthManager) runCheck(ctx context.Context, check HealthCheck) CheckResult {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
	defer cancel()

	result := CheckResult{Status: HealthStatusHealthy, Critical: check.Critical}
	if err := check.Check(checkCtx); err != nil {
		result.Status = HealthStatusUnhealthy
		if !check.Critical {
			result.Status = HealthStatusDegraded
		}
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}

// HealthHandler serves GetHealth as JSON: 503 when unhealthy, 200 otherwise.
func (hm *HealthManager) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.GetHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(health)
	}
}
