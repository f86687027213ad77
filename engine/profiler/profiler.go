package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// Stats summarises pose evaluation over one reporting interval.
type Stats struct {
	Updates        int
	Poses          int
	Failures       int
	UpdatesPerSec  float64
	PosesPerSec    float64
	AvgUpdate      time.Duration
	MaxUpdate      time.Duration
	HeapMB         float64
	AllocRateMB    float64
	GCCount        uint32
	LastGCPauseUs  uint64
	MaxGCPauseUs   uint64
	SysMB          float64
	IntervalLength time.Duration
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often Tick reports. Non-positive values are ignored.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the destination for reports.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(l *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if l != nil {
			p.logger = l
		}
	}
}

// Profiler tracks pose evaluation throughput and memory statistics.
// Outputs stats to the log at a configurable interval. Safe for concurrent use.
type Profiler struct {
	mu             *sync.Mutex
	logger         *log.Logger
	updateCount    int
	poseCount      int
	failureCount   int
	updateTime     time.Duration
	maxUpdate      time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler. The interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         log.Default(),
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one scene update to the current interval.
//
// Parameters:
//   - poses: the number of poses evaluated
//   - failures: how many of them reported an error
//   - elapsed: wall time spent on the update
func (p *Profiler) Record(poses, failures int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.poseCount += poses
	p.failureCount += failures
	p.updateTime += elapsed
	if elapsed > p.maxUpdate {
		p.maxUpdate = elapsed
	}
}

// Tick should be called once per update. When the interval has elapsed it logs and
// returns the interval's statistics and starts a new interval.
//
// Returns:
//   - Stats: the statistics for the finished interval
//   - bool: true if stats were reported this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.updateCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	stats := Stats{
		Updates:        p.updateCount,
		Poses:          p.poseCount,
		Failures:       p.failureCount,
		UpdatesPerSec:  float64(p.updateCount) / elapsed.Seconds(),
		PosesPerSec:    float64(p.poseCount) / elapsed.Seconds(),
		AvgUpdate:      p.updateTime / time.Duration(p.updateCount),
		MaxUpdate:      p.maxUpdate,
		IntervalLength: elapsed,
	}

	runtime.ReadMemStats(&p.memStats)
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	stats.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	stats.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		stats.LastGCPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > stats.MaxGCPauseUs {
				stats.MaxGCPauseUs = pause
			}
		}
	}

	p.logger.Printf("[Profiler] Updates: %.2f/s | Poses: %.2f/s (%d failed) | Update: avg %v, max %v | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		stats.UpdatesPerSec, stats.PosesPerSec, stats.Failures, stats.AvgUpdate, stats.MaxUpdate,
		stats.HeapMB, stats.AllocRateMB, gcCount, stats.LastGCPauseUs, stats.MaxGCPauseUs, stats.SysMB)

	p.updateCount = 0
	p.poseCount = 0
	p.failureCount = 0
	p.updateTime = 0
	p.maxUpdate = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
