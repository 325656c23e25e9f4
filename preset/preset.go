// Package preset loads pipeline definitions from YAML preset files.
package preset

import (
	"os"

	"github.com/pkg/errors"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/pkg/uuidx"
	"gopkg.in/yaml.v3"
)

type blockSpec struct {
	Kind             string            `yaml:"kind"`
	Model            string            `yaml:"model"`
	Prompt           string            `yaml:"prompt"`
	LanguageVars     map[string]string `yaml:"language_vars"`
	SelectedLanguage string            `yaml:"selected_language"`
	Streaming        bool              `yaml:"streaming"`
	JSONMode         bool              `yaml:"json_mode"`
	Render           string            `yaml:"render"`
	ShowOverlay      bool              `yaml:"show_overlay"`
	AutoCopy         bool              `yaml:"auto_copy"`
	AutoPaste        bool              `yaml:"auto_paste"`
	AutoPasteNewline bool              `yaml:"auto_paste_newline"`
	AutoSpeak        bool              `yaml:"auto_speak"`
}

type edgeSpec struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type fileSpec struct {
	PresetID    string      `yaml:"preset_id"`
	Blocks      []blockSpec `yaml:"blocks"`
	Connections []edgeSpec  `yaml:"connections"`
}

// Load reads and parses one preset file.
func Load(path string) (strix.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return strix.Pipeline{}, errors.Wrapf(err, "read preset %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return strix.Pipeline{}, errors.Wrapf(err, "preset %s", path)
	}
	return p, nil
}

// Parse decodes a preset document and validates the resulting pipeline.
func Parse(data []byte) (strix.Pipeline, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return strix.Pipeline{}, errors.Wrap(err, "parse preset yaml")
	}
	if len(spec.Blocks) == 0 {
		return strix.Pipeline{}, errors.New("preset defines no blocks")
	}

	p := strix.Pipeline{
		PresetID: spec.PresetID,
		Blocks:   make([]strix.Block, len(spec.Blocks)),
	}
	for i, bs := range spec.Blocks {
		kind, err := strix.ParseBlockKind(bs.Kind)
		if err != nil {
			return strix.Pipeline{}, errors.Wrapf(err, "block %d", i)
		}
		render := strix.RenderPlain
		if bs.Render == "markdown" {
			render = strix.RenderMarkdown
		}
		p.Blocks[i] = strix.Block{
			ID:               uuidx.New(),
			Index:            i,
			Kind:             kind,
			ModelID:          bs.Model,
			PromptTemplate:   bs.Prompt,
			LanguageVars:     bs.LanguageVars,
			SelectedLanguage: bs.SelectedLanguage,
			Streaming:        bs.Streaming,
			JSONMode:         bs.JSONMode,
			RenderMode:       render,
			ShowOverlay:      bs.ShowOverlay,
			AutoCopy:         bs.AutoCopy,
			AutoPaste:        bs.AutoPaste,
			AutoPasteNewline: bs.AutoPasteNewline,
			AutoSpeak:        bs.AutoSpeak,
		}
		if kind != strix.InputAdapter && bs.Model == "" {
			return strix.Pipeline{}, errors.Errorf("block %d: %s blocks need a model", i, kind)
		}
	}
	for _, es := range spec.Connections {
		p.Connections = append(p.Connections, strix.Edge{From: es.From, To: es.To})
	}

	if err := p.Validate(); err != nil {
		return strix.Pipeline{}, errors.Wrap(err, "invalid pipeline")
	}
	return p, nil
}
