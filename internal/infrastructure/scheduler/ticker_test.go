package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerRunsImmediatelyAndOnInterval(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ticker := NewTicker(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ticker.Start(ctx, func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs, got %d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := ticker.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() > settled+1 {
		t.Fatal("ticker kept running after Stop")
	}
}

func TestTickerStopWithoutStart(t *testing.T) {
	t.Parallel()

	ticker := NewTicker(time.Hour)
	if err := ticker.Stop(context.Background()); err != nil {
		t.Fatalf("Stop without Start: %v", err)
	}
}

func TestTickerNilJob(t *testing.T) {
	t.Parallel()

	ticker := NewTicker(time.Hour)
	if err := ticker.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start with nil job: %v", err)
	}
}
