package backend

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestStage(t *testing.T) {
	for _, tc := range []struct {
		stage Stage
		name  string
		wgpu  wgpu.ShaderStage
	}{
		{StageVertex, "vertex", wgpu.ShaderStageVertex},
		{StageFragment, "fragment", wgpu.ShaderStageFragment},
		{Stage(7), "Stage(7)", wgpu.ShaderStageNone},
	} {
		assert.Equal(t, tc.name, tc.stage.String())
		assert.Equal(t, tc.wgpu, tc.stage.WGPU())
	}
}
