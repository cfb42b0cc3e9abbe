package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - d: the report interval, must be > 0
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithStats sets the backend whose live GPU object counts are included in each report.
//
// Parameters:
//   - s: the stats provider, usually the graphics backend
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the stats option to a profiler
func WithStats(s backend.StatsProvider) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.stats = s
	}
}

// WithReportFunc sets a function that receives every report in addition to the log output.
func WithReportFunc(fn func(Report)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.report = fn
	}
}
