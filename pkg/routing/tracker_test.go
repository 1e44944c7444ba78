package routing

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestHealthTracker_RecordCounts(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("openai")

	tracker.Record("openai", true, 100*time.Millisecond)
	tracker.Record("openai", false, 900*time.Millisecond)
	tracker.Record("openai", true, 200*time.Millisecond)

	rec, ok := tracker.Get("openai")
	if !ok {
		t.Fatal("expected record for openai")
	}
	if rec.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", rec.TotalRequests)
	}
	if rec.TotalSuccesses != 2 {
		t.Errorf("expected 2 successes, got %d", rec.TotalSuccesses)
	}
	if rec.TotalFailures != 1 {
		t.Errorf("expected 1 failure, got %d", rec.TotalFailures)
	}
	if rec.SuccessRate != 2.0/3.0 {
		t.Errorf("expected success rate 2/3, got %f", rec.SuccessRate)
	}
	// Average covers successful attempts only: (100ms + 200ms) / 2
	if rec.AverageResponseTime != 150*time.Millisecond {
		t.Errorf("expected average 150ms, got %s", rec.AverageResponseTime)
	}
	if rec.LastUsedAt.IsZero() {
		t.Error("expected last used timestamp to be set")
	}
}

func TestHealthTracker_ConsecutiveFailures(t *testing.T) {
	tracker := NewHealthTracker()

	tracker.Record("p", false, 0)
	tracker.Record("p", false, 0)
	if rec, _ := tracker.Get("p"); rec.ConsecutiveFailures != 2 {
		t.Errorf("expected 2 consecutive failures, got %d", rec.ConsecutiveFailures)
	}

	tracker.Record("p", true, 10*time.Millisecond)
	if rec, _ := tracker.Get("p"); rec.ConsecutiveFailures != 0 {
		t.Errorf("expected success to reset consecutive failures, got %d", rec.ConsecutiveFailures)
	}

	tracker.Record("p", false, 0)
	if rec, _ := tracker.Get("p"); rec.ConsecutiveFailures != 1 {
		t.Errorf("expected 1 consecutive failure, got %d", rec.ConsecutiveFailures)
	}
}

func TestHealthTracker_SuccessRateUnvisited(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("idle")

	if rate := tracker.SuccessRate("idle"); rate != 1.0 {
		t.Errorf("expected unvisited provider rate 1.0, got %f", rate)
	}
	if rate := tracker.SuccessRate("unknown"); rate != 1.0 {
		t.Errorf("expected unknown provider rate 1.0, got %f", rate)
	}
}

func TestHealthTracker_IsHealthy(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		threshold int
		want      bool
	}{
		{"no failures", 0, 3, true},
		{"below threshold", 2, 3, true},
		{"at threshold", 3, 3, false},
		{"above threshold", 5, 3, false},
		{"threshold one", 1, 1, false},
		{"disabled threshold", 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewHealthTracker()
			for i := 0; i < tt.failures; i++ {
				tracker.Record("p", false, 0)
			}
			if got := tracker.IsHealthy("p", tt.threshold); got != tt.want {
				t.Errorf("IsHealthy(%d failures, threshold %d) = %v, want %v",
					tt.failures, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestHealthTracker_IsHealthyUnknown(t *testing.T) {
	tracker := NewHealthTracker()
	if !tracker.IsHealthy("never-seen", 3) {
		t.Error("unknown provider should be healthy")
	}
}

func TestHealthTracker_HealthRecovery(t *testing.T) {
	tracker := NewHealthTracker()

	for i := 0; i < 3; i++ {
		tracker.Record("p", false, 0)
	}
	if tracker.IsHealthy("p", 3) {
		t.Fatal("expected provider to be unhealthy after 3 consecutive failures")
	}

	tracker.Record("p", true, 10*time.Millisecond)
	if !tracker.IsHealthy("p", 3) {
		t.Error("expected provider to recover after a success")
	}
}

func TestHealthTracker_RankBySuccessRate(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("flaky")
	tracker.Register("solid")

	tracker.Record("flaky", true, 10*time.Millisecond)
	tracker.Record("flaky", false, 0)
	tracker.Record("solid", true, 50*time.Millisecond)
	tracker.Record("solid", true, 50*time.Millisecond)

	got := tracker.Rank([]string{"flaky", "solid"})
	want := []string{"solid", "flaky"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected rank %v, got %v", want, got)
	}
}

func TestHealthTracker_RankTieBrokenByLatency(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("slow")
	tracker.Register("fast")

	tracker.Record("slow", true, 500*time.Millisecond)
	tracker.Record("fast", true, 50*time.Millisecond)

	got := tracker.Rank([]string{"slow", "fast"})
	want := []string{"fast", "slow"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected rank %v, got %v", want, got)
	}
}

func TestHealthTracker_RankRegistrationOrder(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("first")
	tracker.Register("second")

	// Never-called providers rank in registration order regardless of
	// candidate order
	got := tracker.Rank([]string{"second", "first"})
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected rank %v, got %v", want, got)
	}
}

func TestHealthTracker_RankUnregisteredKeepInputOrder(t *testing.T) {
	tracker := NewHealthTracker()

	got := tracker.Rank([]string{"x", "y", "z"})
	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected rank %v, got %v", want, got)
	}
}

func TestHealthTracker_Snapshot(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("a")
	tracker.Register("b")
	tracker.Record("b", true, 20*time.Millisecond)

	snap := tracker.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	if snap[0].ProviderID != "a" || snap[1].ProviderID != "b" {
		t.Errorf("expected registration order a,b, got %s,%s", snap[0].ProviderID, snap[1].ProviderID)
	}
	if snap[0].TotalRequests != 0 {
		t.Errorf("expected 0 requests for a, got %d", snap[0].TotalRequests)
	}
	if snap[1].TotalRequests != 1 {
		t.Errorf("expected 1 request for b, got %d", snap[1].TotalRequests)
	}
}

func TestHealthTracker_ResetPreservesOrder(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("a")
	tracker.Register("b")
	tracker.Record("a", false, 0)
	tracker.Record("b", true, 10*time.Millisecond)

	tracker.Reset()

	if got := tracker.Registered(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected registration order preserved, got %v", got)
	}
	rec, ok := tracker.Get("a")
	if !ok {
		t.Fatal("expected record for a after reset")
	}
	if rec.TotalRequests != 0 || rec.ConsecutiveFailures != 0 {
		t.Errorf("expected zeroed record, got %+v", rec)
	}
	if got := tracker.Rank([]string{"b", "a"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected registration-order rank after reset, got %v", got)
	}
}

func TestHealthTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Register("p")

	var wg sync.WaitGroup
	for worker := 0; worker < 10; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tracker.Record("p", i%2 == 0, time.Millisecond)
			}
		}(worker)
	}
	wg.Wait()

	rec, _ := tracker.Get("p")
	if rec.TotalRequests != 1000 {
		t.Errorf("expected 1000 requests, got %d", rec.TotalRequests)
	}
	if rec.TotalSuccesses != 500 {
		t.Errorf("expected 500 successes, got %d", rec.TotalSuccesses)
	}
	if rec.TotalFailures != 500 {
		t.Errorf("expected 500 failures, got %d", rec.TotalFailures)
	}
}
