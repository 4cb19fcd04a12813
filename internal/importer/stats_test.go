package importer

import (
	"testing"
	"time"
)

func TestStats_Snapshot(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{40, 10, 30, 20} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 40 {
		t.Errorf("unexpected min/max %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 25 {
		t.Errorf("expected avg 25, got %v", snap.AvgMs)
	}
	if snap.P50Ms != 25 {
		t.Errorf("expected p50 25, got %v", snap.P50Ms)
	}
}

func TestStats_WindowPrunes(t *testing.T) {
	s := NewStats(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Record(5 * time.Millisecond)

	now = now.Add(2 * time.Minute)
	if got := s.Snapshot(); got.Count != 0 {
		t.Errorf("expected old sample pruned, got %+v", got)
	}
}

func TestStats_NegativeClamped(t *testing.T) {
	s := NewStats(0)
	s.Record(-time.Second)
	if got := s.Snapshot(); got.MinMs != 0 || got.Count != 1 {
		t.Errorf("unexpected snapshot %+v", got)
	}
}

func TestPercentile(t *testing.T) {
	vals := []int64{1, 2, 3, 4, 5}
	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 1}, {50, 3}, {100, 5}, {25, 2}, {90, 4.6},
	}
	for _, tt := range tests {
		if got := percentile(vals, tt.pct); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("percentile(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("expected 0 for empty input")
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, want in [%v, %v)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("Backoff(10) = %v, expected cap at 30s plus jitter", d)
	}
}
