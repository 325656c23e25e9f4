package strix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearPipeline(n int) Pipeline {
	p := Pipeline{PresetID: "test"}
	for i := 0; i < n; i++ {
		p.Blocks = append(p.Blocks, Block{Index: i, Kind: TextBlock, ModelID: "m"})
	}
	return p
}

func TestDownstreamLinear(t *testing.T) {
	p := linearPipeline(3)

	assert.Equal(t, []int{1}, p.Downstream(0))
	assert.Equal(t, []int{2}, p.Downstream(1))
	assert.Empty(t, p.Downstream(2), "last block has no successor")
}

func TestDownstreamExplicitEdges(t *testing.T) {
	p := linearPipeline(4)
	p.Connections = []Edge{{From: 0, To: 2}, {From: 0, To: 3}}

	assert.Equal(t, []int{2, 3}, p.Downstream(0))
	assert.Empty(t, p.Downstream(1), "no implicit i+1 fallback once edges exist")
	assert.Empty(t, p.Downstream(2))
	assert.Empty(t, p.Downstream(3))
}

func TestRoots(t *testing.T) {
	t.Run("linear starts at zero", func(t *testing.T) {
		p := linearPipeline(3)
		assert.Equal(t, []int{0}, p.Roots())
	})

	t.Run("explicit graph roots are blocks without incoming edges", func(t *testing.T) {
		p := linearPipeline(4)
		p.Connections = []Edge{{From: 0, To: 2}, {From: 1, To: 2}, {From: 2, To: 3}}
		assert.Equal(t, []int{0, 1}, p.Roots())
	})

	t.Run("empty pipeline has no roots", func(t *testing.T) {
		assert.Nil(t, Pipeline{}.Roots())
	})
}

func TestCloneIsDeep(t *testing.T) {
	p := linearPipeline(2)
	p.Blocks[0].LanguageVars = map[string]string{"language1": "Korean"}
	p.Connections = []Edge{{From: 0, To: 1}}

	clone := p.Clone()
	clone.Blocks[0].LanguageVars["language1"] = "changed"
	clone.Connections[0].To = 0

	assert.Equal(t, "Korean", p.Blocks[0].LanguageVars["language1"])
	assert.Equal(t, 1, p.Connections[0].To)
}

func TestValidate(t *testing.T) {
	t.Run("linear is always structurally valid", func(t *testing.T) {
		assert.NoError(t, linearPipeline(5).Validate())
	})

	t.Run("acyclic graph passes", func(t *testing.T) {
		p := linearPipeline(3)
		p.Connections = []Edge{{From: 0, To: 1}, {From: 0, To: 2}}
		assert.NoError(t, p.Validate())
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		p := linearPipeline(3)
		p.Connections = []Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 0}}
		assert.Error(t, p.Validate())
	})

	t.Run("dangling edge is rejected", func(t *testing.T) {
		p := linearPipeline(2)
		p.Connections = []Edge{{From: 0, To: 7}}
		assert.Error(t, p.Validate())
	})

	t.Run("index mismatch is rejected", func(t *testing.T) {
		p := linearPipeline(2)
		p.Blocks[1].Index = 5
		assert.Error(t, p.Validate())
	})
}

func TestVisibilityOrdinal(t *testing.T) {
	p := linearPipeline(4)
	p.Blocks[1].ShowOverlay = true
	p.Blocks[3].ShowOverlay = true

	assert.Equal(t, 0, p.VisibilityOrdinal(0))
	assert.Equal(t, 1, p.VisibilityOrdinal(1))
	assert.Equal(t, 1, p.VisibilityOrdinal(2))
	assert.Equal(t, 2, p.VisibilityOrdinal(3))
}

func TestParseBlockKind(t *testing.T) {
	for in, want := range map[string]BlockKind{
		"input":   InputAdapter,
		"adapter": InputAdapter,
		"text":    TextBlock,
		"":        TextBlock,
		"image":   ImageBlock,
		"vision":  ImageBlock,
	} {
		got, err := ParseBlockKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBlockKind("bogus")
	assert.Error(t, err)
}
