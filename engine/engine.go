package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/hotreload"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// engine implements the Engine interface.
// Every method must be called from the goroutine that owns the GL context.
type engine struct {
	backend  backend.Backend
	window   window.Window
	registry shader.Registry
	watcher  hotreload.Watcher
	globals  *uniform.Globals
	camera   camera.Camera
	rng      *common.Random

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	now       func() time.Time
	sleep     func(time.Duration)
	lastFrame time.Time
	frames    uint64

	quitOnce    sync.Once
	releaseOnce sync.Once
}

// Engine hosts the per-frame bookkeeping around a GL context: applying pending shader reloads,
// writing the camera into the global uniform blocks and calling the render callback.
type Engine interface {
	// Window returns the underlying window, nil if the engine was built without one.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Backend returns the graphics backend every resource is created on.
	//
	// Returns:
	//   - backend.Backend: the backend
	Backend() backend.Backend

	// Registry returns the shader registry.
	//
	// Returns:
	//   - shader.Registry: the registry
	Registry() shader.Registry

	// Globals returns the engine's global uniform buffers.
	//
	// Returns:
	//   - *uniform.Globals: the global buffers
	Globals() *uniform.Globals

	// Camera returns the camera written into the Transforms block each frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers the function called each frame after the uniforms are current.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frame runs one frame: due shader reloads are applied, the camera is written into the
	// Transforms block, dirty uniforms are uploaded and the render callback runs. Reload failures
	// are logged and leave the affected programs unusable until a later edit fixes them.
	Frame()

	// Frames returns the number of frames run so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run drives Frame from the window's message loop and blocks until the window closes.
	// It panics if the engine has no window.
	Run()

	// Quit closes the window, which ends Run. Safe to call multiple times.
	Quit()

	// Release closes the watcher and frees every shader and uniform buffer. Safe to call multiple
	// times.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine on the given backend. The global uniform buffers are allocated
// immediately, so the backend's context must be current.
//
// Parameters:
//   - b: the graphics backend
//   - options: functional options for engine configuration (window, watcher, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(b backend.Backend, options ...EngineBuilderOption) Engine {
	if b == nil {
		panic("engine: backend must not be nil")
	}
	e := &engine{
		backend:  b,
		profiler: profiler.NewProfiler(),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.registry == nil {
		e.registry = shader.NewRegistry(b)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	e.globals = uniform.NewGlobals(b, e.rng)

	if e.window != nil {
		if h := e.window.Height(); h > 0 {
			e.camera.SetAspect(float32(e.window.Width()) / float32(h))
		}
		e.window.SetResizeCallback(func(width, height int) {
			if height > 0 {
				e.camera.SetAspect(float32(width) / float32(height))
			}
		})
	}

	e.lastFrame = e.now()
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() backend.Backend {
	return e.backend
}

func (e *engine) Registry() shader.Registry {
	return e.registry
}

func (e *engine) Globals() *uniform.Globals {
	return e.globals
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderCallback registers the function called each frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frame() {
	start := e.now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	if e.watcher != nil {
		n, err := e.watcher.Poll()
		if n > 0 {
			common.Logger().Info("shaders reloaded", "paths", n)
		}
		if err != nil {
			common.Logger().Warn("shader reload failed", "error", err)
		}
	}

	// only a moved camera marks the block dirty
	var t uniform.Transforms
	e.camera.Apply(&t)
	if t != e.globals.Transforms.Read() {
		*e.globals.Transforms.Get() = t
	}
	e.globals.Update()

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	e.frames++

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() {
	if e.window == nil {
		panic("engine: Run requires a window")
	}
	e.window.SetUpdateCallback(e.Frame)
	e.window.ProcessMessages()
}

// Quit closes the window once; later calls are no-ops.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window == nil {
			return
		}
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("window close failed", "error", err)
		}
	})
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				common.Logger().Warn("watcher close failed", "error", err)
			}
		}
		e.registry.Release()
		e.globals.Release()
		common.Logger().Debug("engine released", "frames", e.frames)
	})
}
