package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixhq/strix"
)

const translatePreset = `
preset_id: translate
blocks:
  - kind: input
    auto_copy: true
  - kind: text
    model: gpt-4o-mini
    prompt: "Translate to {language1}."
    language_vars:
      language1: Korean
    streaming: true
    render: markdown
    show_overlay: true
connections:
  - from: 0
    to: 1
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(translatePreset))
	require.NoError(t, err)

	assert.Equal(t, "translate", p.PresetID)
	require.Len(t, p.Blocks, 2)

	adapter := p.Blocks[0]
	assert.Equal(t, strix.InputAdapter, adapter.Kind)
	assert.Equal(t, 0, adapter.Index)
	assert.True(t, adapter.AutoCopy)
	assert.NotZero(t, adapter.ID)

	translate := p.Blocks[1]
	assert.Equal(t, strix.TextBlock, translate.Kind)
	assert.Equal(t, "gpt-4o-mini", translate.ModelID)
	assert.Equal(t, "Translate to {language1}.", translate.PromptTemplate)
	assert.Equal(t, map[string]string{"language1": "Korean"}, translate.LanguageVars)
	assert.True(t, translate.Streaming)
	assert.Equal(t, strix.RenderMarkdown, translate.RenderMode)
	assert.True(t, translate.ShowOverlay)

	assert.Equal(t, []strix.Edge{{From: 0, To: 1}}, p.Connections)
	assert.NotEqual(t, p.Blocks[0].ID, p.Blocks[1].ID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", ":::"},
		{"no blocks", "preset_id: empty\n"},
		{
			"unknown kind",
			"blocks:\n  - kind: video\n    model: m\n",
		},
		{
			"text block without model",
			"blocks:\n  - kind: text\n    prompt: hi\n",
		},
		{
			"dangling edge",
			"blocks:\n  - kind: text\n    model: m\nconnections:\n  - from: 0\n    to: 5\n",
		},
		{
			"cycle",
			"blocks:\n  - kind: text\n    model: a\n  - kind: text\n    model: b\nconnections:\n  - from: 0\n    to: 1\n  - from: 1\n    to: 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "translate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(translatePreset), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "translate", p.PresetID)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
