package search

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestHealthTrackerHealthyByDefault(t *testing.T) {
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	if ht.IsFailing("google") {
		t.Fatal("untracked engine should not be failing")
	}
	if !ht.RetryAllowed("google") {
		t.Fatal("untracked engine should allow retry")
	}
}

func TestHealthTrackerMarkFailed(t *testing.T) {
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.MarkFailed("bing")
	if !ht.IsFailing("bing") {
		t.Fatal("engine should be failing right after MarkFailed")
	}
	if ht.IsFailing("google") {
		t.Fatal("other engines should be unaffected")
	}
}

func TestHealthTrackerFailWindowBoundary(t *testing.T) {
	now := time.Now()
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.now = func() time.Time { return now }

	ht.MarkFailed("yandex")

	// Failing strictly inside the window.
	now = now.Add(5*time.Minute - time.Second)
	if !ht.IsFailing("yandex") {
		t.Fatal("engine should still be failing just inside the window")
	}

	// Healed at exactly the window boundary.
	now = now.Add(time.Second)
	if ht.IsFailing("yandex") {
		t.Fatal("engine should heal at exactly the fail window")
	}
}

func TestHealthTrackerLazyExpiryDeletesEntry(t *testing.T) {
	now := time.Now()
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.now = func() time.Time { return now }

	ht.MarkFailed("startpage")
	now = now.Add(6 * time.Minute)

	if ht.IsFailing("startpage") {
		t.Fatal("engine should have healed")
	}
	// The expired entry is gone, so a retry check no longer sees it.
	ht.retryWindow = time.Hour
	if !ht.RetryAllowed("startpage") {
		t.Fatal("healed engine should allow retry regardless of retry window")
	}
}

func TestHealthTrackerRetryWindow(t *testing.T) {
	now := time.Now()
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.now = func() time.Time { return now }

	ht.MarkFailed("ecosia")
	if ht.RetryAllowed("ecosia") {
		t.Fatal("retry should be blocked right after failure")
	}

	now = now.Add(29 * time.Second)
	if ht.RetryAllowed("ecosia") {
		t.Fatal("retry should be blocked inside the retry window")
	}

	now = now.Add(time.Second)
	if !ht.RetryAllowed("ecosia") {
		t.Fatal("retry should be allowed at the retry window")
	}
	// The longer fail window still classifies the engine as failing.
	if !ht.IsFailing("ecosia") {
		t.Fatal("engine should still be failing after the retry window")
	}
}

func TestHealthTrackerMarkFailedOverwrites(t *testing.T) {
	now := time.Now()
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.now = func() time.Time { return now }

	ht.MarkFailed("google")
	now = now.Add(4 * time.Minute)
	ht.MarkFailed("google")

	// The window restarts from the second failure.
	now = now.Add(2 * time.Minute)
	if !ht.IsFailing("google") {
		t.Fatal("engine should still be failing, second failure restarted the window")
	}
}

func TestHealthTrackerFailingEngines(t *testing.T) {
	now := time.Now()
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.now = func() time.Time { return now }

	ht.MarkFailed("google")
	now = now.Add(time.Minute)
	ht.MarkFailed("bing")

	got := ht.FailingEngines()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "bing" || got[1] != "google" {
		t.Fatalf("expected [bing google], got %v", got)
	}

	// google expires first.
	now = now.Add(4 * time.Minute)
	got = ht.FailingEngines()
	if len(got) != 1 || got[0] != "bing" {
		t.Fatalf("expected [bing], got %v", got)
	}
}

func TestHealthTrackerReset(t *testing.T) {
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	ht.MarkFailed("google")
	ht.Reset()
	if ht.IsFailing("google") {
		t.Fatal("reset should forget all failures")
	}
}

func TestHealthTrackerConcurrentAccess(t *testing.T) {
	ht := NewHealthTracker(5*time.Minute, 30*time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ht.MarkFailed("google")
			ht.IsFailing("google")
			ht.RetryAllowed("google")
			ht.FailingEngines()
		}()
	}
	wg.Wait()
	if !ht.IsFailing("google") {
		t.Fatal("engine should be failing after concurrent marks")
	}
}
