package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("unreachable") }

func TestHealthManagerAggregates(t *testing.T) {
	testCases := []struct {
		name   string
		checks []HealthCheck
		want   HealthStatus
	}{
		{"no checks", nil, HealthStatusHealthy},
		{"all ok", []HealthCheck{{Name: "mongo", Critical: true, Check: ok}}, HealthStatusHealthy},
		{"optional failing", []HealthCheck{
			{Name: "mongo", Critical: true, Check: ok},
			{Name: "llm", Check: fail},
		}, HealthStatusDegraded},
		{"critical failing", []HealthCheck{
			{Name: "mongo", Critical: true, Check: fail},
			{Name: "llm", Check: fail},
		}, HealthStatusUnhealthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hm := NewHealthManager("test", 0, nil)
			for _, c := range tc.checks {
				hm.RegisterCheck(c)
			}
			health := hm.GetHealth(context.Background())
			assert.Equal(t, tc.want, health.Status)
			assert.Len(t, health.Checks, len(tc.checks))
		})
	}
}

func TestHealthManagerReplacesCheck(t *testing.T) {
	hm := NewHealthManager("", 0, nil)
	hm.RegisterCheck(HealthCheck{Name: "mongo", Critical: true, Check: fail})
	hm.RegisterCheck(HealthCheck{Name: "mongo", Critical: true, Check: ok})

	health := hm.GetHealth(context.Background())
	assert.Equal(t, HealthStatusHealthy, health.Status)
	assert.Len(t, health.Checks, 1)
}

func TestHealthHandler(t *testing.T) {
	hm := NewHealthManager("1.2.3", 0, NewMetricsManager(MetricsConfig{}))
	hm.RegisterCheck(HealthCheck{Name: "mongo", Critical: true, Check: fail})

	rec := httptest.NewRecorder()
	hm.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "unreachable", body.Checks["mongo"].Error)
}
