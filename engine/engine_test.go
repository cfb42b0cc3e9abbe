package engine

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/fake"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

// scriptedWindow runs its update callback a fixed number of times.
type scriptedWindow struct {
	frames   int
	width    int
	height   int
	closed   int
	onUpdate func()
	onResize func(width, height int)
}

func (w *scriptedWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *scriptedWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *scriptedWindow) SetKeyDownCallback(func(keyCode uint32))            {}
func (w *scriptedWindow) MakeContextCurrent()                                {}
func (w *scriptedWindow) SwapBuffers()                                       {}
func (w *scriptedWindow) IsRunning() bool                                    { return w.closed == 0 }
func (w *scriptedWindow) Width() int                                         { return w.width }
func (w *scriptedWindow) Height() int                                        { return w.height }

func (w *scriptedWindow) Close() error {
	w.closed++
	return nil
}

func (w *scriptedWindow) ProcessMessages() {
	for range w.frames {
		if !w.IsRunning() {
			return
		}
		w.onUpdate()
	}
}

// stubWatcher returns a scripted Poll result.
type stubWatcher struct {
	reloaded int
	err      error
	polls    int
	closed   int
}

func (w *stubWatcher) Add(string) error    { return nil }
func (w *stubWatcher) Remove(string) error { return nil }
func (w *stubWatcher) Pending() int        { return 0 }

func (w *stubWatcher) Poll() (int, error) {
	w.polls++
	return w.reloaded, w.err
}

func (w *stubWatcher) Close() error {
	w.closed++
	return nil
}

func TestNewEnginePanicsWithoutBackend(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil) })
}

func TestFrameUploadsCameraTransforms(t *testing.T) {
	b := fake.New()
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec3{1, 2, 3}))
	e := NewEngine(b, WithCamera(cam))

	e.Frame()

	var want uniform.Transforms
	cam.Apply(&want)
	g := e.Globals()
	assert.False(t, g.Transforms.Dirty())
	assert.Equal(t, common.StructToBytes(&want), b.BufferContents(g.Transforms.ID()))
	assert.Equal(t, g.Transforms.ID(), b.UniformBinding(uniform.TransformsBinding))
	assert.Equal(t, uint64(1), e.Frames())
	assert.Empty(t, b.Errors)
}

func TestFrameUploadsTransformsOnlyWhenCameraMoves(t *testing.T) {
	b := fake.New()
	e := NewEngine(b)

	e.Frame()
	first := b.Calls["BufferSubData"]
	assert.Positive(t, first)

	e.Frame()
	e.Frame()
	assert.Equal(t, first, b.Calls["BufferSubData"], "a still camera uploads nothing")

	e.Camera().SetPosition(mgl32.Vec3{0, 1, 5})
	e.Frame()
	assert.Equal(t, first+1, b.Calls["BufferSubData"])

	var want uniform.Transforms
	e.Camera().Apply(&want)
	assert.Equal(t, common.StructToBytes(&want), b.BufferContents(e.Globals().Transforms.ID()))
}

func TestFramePollsWatcherAndLogsFailures(t *testing.T) {
	var sb strings.Builder
	common.SetLogger(slog.New(slog.NewTextHandler(&sb, nil)))
	defer common.SetLogger(nil)

	w := &stubWatcher{reloaded: 2, err: errors.New("boom")}
	e := NewEngine(fake.New(), WithWatcher(w))

	e.Frame()

	assert.Equal(t, 1, w.polls)
	assert.Contains(t, sb.String(), "shaders reloaded")
	assert.Contains(t, sb.String(), "error=boom")
}

func TestFramePassesDeltaTimeAndHonorsLimit(t *testing.T) {
	clock := time.Unix(0, 0)
	var slept []time.Duration

	e := NewEngine(fake.New(), WithRenderFrameLimit(10)).(*engine)
	e.now = func() time.Time { return clock }
	e.sleep = func(d time.Duration) { slept = append(slept, d) }
	e.lastFrame = clock

	var got []float32
	e.SetRenderCallback(func(dt float32) {
		got = append(got, dt)
		clock = clock.Add(30 * time.Millisecond)
	})

	e.Frame()
	clock = clock.Add(200 * time.Millisecond)
	e.Frame()

	assert.InDeltaSlice(t, []float32{0, 0.23}, got, 1e-6)
	assert.Equal(t, []time.Duration{70 * time.Millisecond, 70 * time.Millisecond}, slept)

	e.SetRenderFrameLimit(0)
	e.Frame()
	assert.Len(t, slept, 2)
}

func TestRunDrivesFramesFromWindow(t *testing.T) {
	w := &scriptedWindow{frames: 3, width: 800, height: 400}
	e := NewEngine(fake.New(), WithWindow(w))
	assert.Equal(t, float32(2), e.Camera().Aspect())

	var calls int
	e.SetRenderCallback(func(float32) { calls++ })
	e.Run()
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), e.Frames())

	w.onResize(300, 300)
	assert.Equal(t, float32(1), e.Camera().Aspect())
	w.onResize(300, 0)
	assert.Equal(t, float32(1), e.Camera().Aspect())

	e.Quit()
	e.Quit()
	assert.Equal(t, 1, w.closed)
}

func TestRunPanicsWithoutWindow(t *testing.T) {
	e := NewEngine(fake.New())
	assert.Panics(t, e.Run)
	assert.NotPanics(t, e.Quit)
}

func TestProfilerTicksOnlyWhenEnabled(t *testing.T) {
	var reports int
	p := profiler.NewProfiler(
		profiler.WithInterval(time.Nanosecond),
		profiler.WithReportFunc(func(profiler.Report) { reports++ }),
	)
	e := NewEngine(fake.New(), WithProfiler(p))
	e.SetRenderCallback(func(float32) { time.Sleep(time.Millisecond) })

	e.Frame()
	assert.Zero(t, reports)

	e.EnableProfiler()
	e.Frame()
	assert.Equal(t, 1, reports)

	e.DisableProfiler()
	e.Frame()
	assert.Equal(t, 1, reports)
}

func TestReleaseFreesEverythingOnce(t *testing.T) {
	b := fake.New()
	w := &stubWatcher{}
	e := NewEngine(b, WithWatcher(w), WithRandom(common.NewRandom(7)))

	_, err := e.Registry().AddProgram("empty")
	require.NoError(t, err)
	assert.Equal(t, backend.Stats{Buffers: 2}, b.Stats())

	e.Release()
	e.Release()

	assert.Equal(t, 1, w.closed)
	assert.Equal(t, backend.Stats{}, b.Stats())
	assert.Empty(t, b.Errors)
}
