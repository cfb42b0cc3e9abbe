package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/hotreload"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, for example one built with profiler.WithStats.
//
// Parameters:
//   - p: the profiler to tick each frame while profiling is enabled
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window whose message loop drives Run.
//
// Parameters:
//   - w: a window whose context is current on the calling thread
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRegistry sets the shader registry rather than creating an empty one on the engine's backend.
//
// Parameters:
//   - r: the registry, built on the same backend as the engine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRegistry(r shader.Registry) EngineBuilderOption {
	return func(e *engine) {
		e.registry = r
	}
}

// WithWatcher sets the watcher polled at the start of each frame.
//
// Parameters:
//   - w: a watcher reloading into the engine's registry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatcher(w hotreload.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}

// WithCamera sets the camera written into the Transforms block.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithRandom sets the generator used for the perlin noise tables.
//
// Parameters:
//   - rng: the generator, nil keeps the fixed default seed
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRandom(rng *common.Random) EngineBuilderOption {
	return func(e *engine) {
		e.rng = rng
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
