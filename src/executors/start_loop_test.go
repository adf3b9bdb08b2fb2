package executors

import (
	"context"
	"testing"
	"time"
)

func TestGetConfigDefaultSchedule(t *testing.T) {
	if got := GetConfig().CheckSchedule; got != "@every 1m" {
		t.Fatalf("unexpected default schedule: %q", got)
	}
}

func TestStartLoopRejectsInvalidSchedule(t *testing.T) {
	t.Setenv("QUOTE_PROVIDER", "binance")
	t.Setenv("CHECK_SCHEDULE", "whenever")

	if err := StartLoop(context.Background()); err == nil {
		t.Fatal("expected an error for an unparseable schedule")
	}
}

func TestStartLoopStopsOnContextCancel(t *testing.T) {
	t.Setenv("QUOTE_PROVIDER", "binance")
	// Far enough out that no tick fires during the test.
	t.Setenv("CHECK_SCHEDULE", "@every 24h")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- StartLoop(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("StartLoop did not stop after cancel")
	}
}
