package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietSpinner(ctx context.Context, msg string) (*Spinner, *syncBuffer) {
	var buf syncBuffer
	s := newSpinnerWithContext(ctx, msg)
	s.w = &buf
	return s, &buf
}

func TestSpinnerDrawsAndUpdates(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "settling")
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Update("settling (tick 40)")
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	out := buf.String()
	for _, want := range []string{"settling", "tick 40"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if s.Cancelled() {
		t.Error("Cancelled() after a plain Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "rendering")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s, _ := quietSpinner(ctx, "rendering")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "stopping")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	out := captureStdout(t)

	s, _ := quietSpinner(context.Background(), "working")
	s.Start()
	s.StopWithSuccess("done")

	s, _ = quietSpinner(context.Background(), "working")
	s.Start()
	s.StopWithError("failed")

	got := out.String()
	if !strings.Contains(got, iconSuccess+" done") || !strings.Contains(got, iconError+" failed") {
		t.Errorf("output = %q", got)
	}
}
