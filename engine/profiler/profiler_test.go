package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestProfiler(buf *bytes.Buffer, clock *fakeClock) *Profiler {
	p := NewProfiler(WithInterval(time.Second), WithLogger(log.New(buf, "", 0)))
	p.now = clock.now
	p.lastTime = clock.t
	return p
}

func TestTickWaitsForInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := newTestProfiler(&buf, clock)

	p.Record(4, 0, 10*time.Millisecond)
	clock.t = clock.t.Add(500 * time.Millisecond)
	if _, ok := p.Tick(); ok {
		t.Fatal("Tick reported before the interval elapsed")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestTickReportsInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := newTestProfiler(&buf, clock)

	p.Record(4, 1, 10*time.Millisecond)
	p.Tick()
	p.Record(4, 0, 30*time.Millisecond)
	clock.t = clock.t.Add(2 * time.Second)

	stats, ok := p.Tick()
	if !ok {
		t.Fatal("Tick did not report after the interval")
	}
	if stats.Updates != 2 || stats.Poses != 8 || stats.Failures != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.PosesPerSec != 4 || stats.UpdatesPerSec != 1 {
		t.Errorf("rates = %v poses/s, %v updates/s", stats.PosesPerSec, stats.UpdatesPerSec)
	}
	if stats.AvgUpdate != 20*time.Millisecond || stats.MaxUpdate != 30*time.Millisecond {
		t.Errorf("update timing = avg %v max %v", stats.AvgUpdate, stats.MaxUpdate)
	}
	if !strings.HasPrefix(buf.String(), "[Profiler]") {
		t.Errorf("log = %q, want [Profiler] prefix", buf.String())
	}

	clock.t = clock.t.Add(time.Second)
	next, ok := p.Tick()
	if !ok || next.Poses != 0 || next.Updates != 1 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	if p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want 1s", p.updateInterval)
	}
}
