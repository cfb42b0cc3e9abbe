package geometry

// GeometryBufferBuilderOption is a functional option for configuring a GeometryBuffer via NewGeometryBuffer.
type GeometryBufferBuilderOption func(*geometryBuffer)

// WithEpsilon is an option builder that sets the component tolerance used for deduplication.
// Negative values are ignored and the default of DefaultEpsilon is kept.
//
// Parameters:
//   - epsilon: the tolerance, must be >= 0
//
// Returns:
//   - GeometryBufferBuilderOption: a function that applies the epsilon option to a buffer
func WithEpsilon(epsilon float32) GeometryBufferBuilderOption {
	return func(g *geometryBuffer) {
		if epsilon >= 0 {
			g.epsilon = epsilon
		}
	}
}

// WithDeduplication is an option builder that turns vertex deduplication on or off from the
// first vertex. Deduplication is on by default.
//
// Parameters:
//   - enabled: whether added vertices are deduplicated
//
// Returns:
//   - GeometryBufferBuilderOption: a function that applies the deduplication option to a buffer
func WithDeduplication(enabled bool) GeometryBufferBuilderOption {
	return func(g *geometryBuffer) {
		g.tracking = enabled
	}
}

// WithLabel is an option builder that names the buffer in log output.
//
// Parameters:
//   - label: the buffer name
//
// Returns:
//   - GeometryBufferBuilderOption: a function that applies the label option to a buffer
func WithLabel(label string) GeometryBufferBuilderOption {
	return func(g *geometryBuffer) {
		g.label = label
	}
}
