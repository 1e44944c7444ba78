package routing

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestSelector(providerIDs ...string) (*Selector, *HealthTracker) {
	tracker := NewHealthTracker()
	for _, id := range providerIDs {
		tracker.Register(id)
	}
	return NewSelector(tracker, 3), tracker
}

func TestSelector_NoProviders(t *testing.T) {
	selector, _ := newTestSelector()

	_, err := selector.Candidates("", "")
	if !errors.Is(err, ErrNoProvidersConfigured) {
		t.Errorf("expected ErrNoProvidersConfigured, got %v", err)
	}
}

func TestSelector_RegistrationOrderWhenUnvisited(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta", "gamma")

	got, err := selector.Candidates("", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelector_ExplicitFirst(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta", "gamma")

	got, err := selector.Candidates("beta", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"beta", "alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelector_ExplicitUnknown(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta")

	_, err := selector.Candidates("ghost", "")
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}

	var notFound *ProviderNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProviderNotFoundError, got %T", err)
	}
	if notFound.ProviderID != "ghost" {
		t.Errorf("expected provider ghost in error, got %q", notFound.ProviderID)
	}
	if !strings.Contains(err.Error(), "alpha") {
		t.Errorf("expected available providers in message, got %q", err.Error())
	}
}

func TestSelector_ExplicitUnhealthyStillFirst(t *testing.T) {
	selector, tracker := newTestSelector("alpha", "beta")

	for i := 0; i < 5; i++ {
		tracker.Record("beta", false, 0)
	}

	got, err := selector.Candidates("beta", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"beta", "alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("explicit provider must lead even when unhealthy: expected %v, got %v", want, got)
	}
}

func TestSelector_PreferredFirst(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta", "gamma")

	got, err := selector.Candidates("", "gamma")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"gamma", "alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelector_PreferredUnhealthyNotPinned(t *testing.T) {
	selector, tracker := newTestSelector("alpha", "beta")

	for i := 0; i < 3; i++ {
		tracker.Record("beta", false, 0)
	}

	got, err := selector.Candidates("", "beta")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	// An unhealthy preference carries no weight: beta is filtered out
	want := []string{"alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelector_PreferredUnknownIgnored(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta")

	got, err := selector.Candidates("", "ghost")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected unknown preference to be ignored, got %v", got)
	}
}

func TestSelector_ExplicitBeatsPreferred(t *testing.T) {
	selector, _ := newTestSelector("alpha", "beta", "gamma")

	got, err := selector.Candidates("beta", "gamma")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if got[0] != "beta" {
		t.Errorf("expected explicit provider first, got %v", got)
	}
}

func TestSelector_UnhealthyExcluded(t *testing.T) {
	selector, tracker := newTestSelector("alpha", "beta", "gamma")

	for i := 0; i < 3; i++ {
		tracker.Record("beta", false, 0)
	}

	got, err := selector.Candidates("", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected unhealthy provider excluded, got %v", got)
	}
}

func TestSelector_AllUnhealthyConsidersAll(t *testing.T) {
	selector, tracker := newTestSelector("alpha", "beta")

	// beta fails more than alpha, both past the threshold
	for i := 0; i < 3; i++ {
		tracker.Record("alpha", false, 0)
	}
	tracker.Record("alpha", true, 10*time.Millisecond)
	for i := 0; i < 3; i++ {
		tracker.Record("alpha", false, 0)
	}
	for i := 0; i < 6; i++ {
		tracker.Record("beta", false, 0)
	}

	got, err := selector.Candidates("", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected all providers when every provider is unhealthy, got %v", got)
	}
	// alpha has the better success rate and must lead
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected healthiest-first order %v, got %v", want, got)
	}

	// The preference does not reorder the all-unhealthy fallback
	got, err = selector.Candidates("", "beta")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected healthiest-first order %v with preference, got %v", want, got)
	}
}

func TestSelector_RanksByRecordedHealth(t *testing.T) {
	selector, tracker := newTestSelector("alpha", "beta")

	tracker.Record("alpha", false, 0)
	tracker.Record("alpha", true, 10*time.Millisecond)
	tracker.Record("beta", true, 10*time.Millisecond)

	got, err := selector.Candidates("", "")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []string{"beta", "alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewSelector_DefaultThreshold(t *testing.T) {
	selector := NewSelector(NewHealthTracker(), 0)
	if selector.Threshold() != DefaultUnhealthyThreshold {
		t.Errorf("expected default threshold %d, got %d", DefaultUnhealthyThreshold, selector.Threshold())
	}
}
