package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/fake"
)

func TestTickReportsAtInterval(t *testing.T) {
	b := fake.New()
	b.CreateBuffer()
	b.CreateVertexArray()

	var reports []Report
	p := NewProfiler(
		WithInterval(time.Second),
		WithStats(b),
		WithReportFunc(func(r Report) { reports = append(reports, r) }),
	)
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }
	p.lastTime = clock

	for range 59 {
		clock = clock.Add(time.Second/60 + time.Microsecond)
		assert.False(t, p.Tick())
	}
	clock = clock.Add(time.Second/60 + time.Microsecond)
	require.True(t, p.Tick())

	require.Len(t, reports, 1)
	assert.InDelta(t, 60, reports[0].FPS, 0.5)
	assert.Equal(t, backend.Stats{Buffers: 1, VertexArrays: 1}, reports[0].GPU)
	assert.Equal(t, reports[0], p.Last())

	assert.False(t, p.Tick(), "the interval restarts after a report")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
