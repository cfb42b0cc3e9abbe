// Package profiler reports frame rate, Go memory statistics and live GPU object counts.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Report is one interval's worth of statistics.
type Report struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64

	// GPU holds the live object counts, zero if no StatsProvider is configured.
	GPU backend.Stats
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// A report is logged through common.Logger at the configured interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stats  backend.StatsProvider
	now    func() time.Time
	last   Report
	report func(Report)
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions to configure the Profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if r.GCCount-start > 256 {
			start = r.GCCount - 256
		}
		for i := start; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	if p.stats != nil {
		r.GPU = p.stats.Stats()
	}

	common.Logger().Info("profiler",
		slog.Float64("fps", r.FPS),
		slog.Float64("heap_mb", r.HeapMB),
		slog.Float64("alloc_rate_mb", r.AllocRateMB),
		slog.Any("gc", r.GCCount),
		slog.Any("gc_last_us", r.LastPauseUs),
		slog.Any("gc_max_us", r.MaxPauseUs),
		slog.Float64("sys_mb", r.SysMB),
		slog.Int("shaders", r.GPU.Shaders),
		slog.Int("programs", r.GPU.Programs),
		slog.Int("vertex_arrays", r.GPU.VertexArrays),
		slog.Int("buffers", r.GPU.Buffers),
	)
	if p.report != nil {
		p.report(r)
	}

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report.
func (p *Profiler) Last() Report {
	return p.last
}
