package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providers"
)

func testCollector() *Collector {
	return NewCollector(config.MetricsConfig{
		Enabled:   true,
		Namespace: "ganymede",
	}, prometheus.NewRegistry())
}

func TestRecordOutcome_Success(t *testing.T) {
	c := testCollector()

	resp := providers.NewSuccess("openai", "gpt-4o-mini", "hello", 42, 100*time.Millisecond)
	c.RecordOutcome(resp, 150*time.Millisecond, false)

	if got := testutil.ToFloat64(c.orchestrator.requests.WithLabelValues("openai", "success")); got != 1 {
		t.Errorf("expected requests_total{openai,success}=1, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.misses); got != 1 {
		t.Errorf("expected one cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.hits); got != 0 {
		t.Errorf("expected zero cache hits, got %v", got)
	}
}

func TestRecordOutcome_CacheHit(t *testing.T) {
	c := testCollector()

	resp := providers.NewSuccess("openai", "gpt-4o-mini", "hello", 42, 0)
	c.RecordOutcome(resp, time.Millisecond, true)

	if got := testutil.ToFloat64(c.cache.hits); got != 1 {
		t.Errorf("expected one cache hit, got %v", got)
	}
}

func TestRecordOutcome_Failure(t *testing.T) {
	c := testCollector()

	resp := providers.NewFailure("anthropic", "", providers.StatusRateLimited, "throttled")
	c.RecordOutcome(resp, time.Second, false)

	if got := testutil.ToFloat64(c.orchestrator.requests.WithLabelValues("anthropic", "rate_limited")); got != 1 {
		t.Errorf("expected requests_total{anthropic,rate_limited}=1, got %v", got)
	}
}

func TestRecordAttempt(t *testing.T) {
	c := testCollector()

	resp := providers.NewFailure("openai", "", providers.StatusTimeout, "deadline exceeded")
	c.RecordAttempt("openai", resp, 5*time.Second)

	if got := testutil.ToFloat64(c.provider.attempts.WithLabelValues("openai", "timeout")); got != 1 {
		t.Errorf("expected provider_attempts_total{openai,timeout}=1, got %v", got)
	}
}

func TestUpdateProviderHealth(t *testing.T) {
	c := testCollector()

	c.UpdateProviderHealth("openai", true)
	if got := testutil.ToFloat64(c.provider.health.WithLabelValues("openai")); got != 1 {
		t.Errorf("expected health gauge 1, got %v", got)
	}

	c.UpdateProviderHealth("openai", false)
	if got := testutil.ToFloat64(c.provider.health.WithLabelValues("openai")); got != 0 {
		t.Errorf("expected health gauge 0, got %v", got)
	}
}

func TestUpdateCacheSize(t *testing.T) {
	c := testCollector()

	c.UpdateCacheSize(17)
	if got := testutil.ToFloat64(c.cache.entries); got != 17 {
		t.Errorf("expected cache_entries 17, got %v", got)
	}
}

func TestRecordFallback(t *testing.T) {
	c := testCollector()

	c.RecordFallback("anthropic")
	c.RecordFallback("anthropic")

	if got := testutil.ToFloat64(c.orchestrator.fallbacks.WithLabelValues("anthropic")); got != 2 {
		t.Errorf("expected fallbacks_total{anthropic}=2, got %v", got)
	}
}

func TestDisabledCollectorIsNoop(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: false}, prometheus.NewRegistry())

	resp := providers.NewSuccess("openai", "gpt-4o-mini", "hi", 1, 0)
	c.RecordOutcome(resp, time.Millisecond, false)
	c.RecordAttempt("openai", resp, time.Millisecond)
	c.UpdateProviderHealth("openai", true)
	c.UpdateCacheSize(5)

	if got := testutil.ToFloat64(c.cache.misses); got != 0 {
		t.Errorf("expected disabled collector to record nothing, got %v misses", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	c := testCollector()
	resp := providers.NewSuccess("openai", "gpt-4o-mini", "hello", 42, time.Millisecond)
	c.RecordOutcome(resp, time.Millisecond, false)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "ganymede_requests_total") {
		t.Errorf("expected exposition to include ganymede_requests_total, got:\n%s", body)
	}
}
