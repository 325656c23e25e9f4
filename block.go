package strix

import (
	"fmt"

	"github.com/google/uuid"
)

// BlockKind discriminates what a block does with its input.
type BlockKind int

const (
	// InputAdapter blocks forward their input text unchanged while still
	// carrying the original capture downstream.
	InputAdapter BlockKind = iota
	// TextBlock blocks run a text completion against their resolved prompt.
	TextBlock
	// ImageBlock blocks run a vision completion against the captured image.
	ImageBlock
)

func (k BlockKind) String() string {
	switch k {
	case InputAdapter:
		return "input"
	case TextBlock:
		return "text"
	case ImageBlock:
		return "image"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// ParseBlockKind maps the preset file representation to a BlockKind.
func ParseBlockKind(s string) (BlockKind, error) {
	switch s {
	case "input", "adapter":
		return InputAdapter, nil
	case "text", "":
		return TextBlock, nil
	case "image", "vision":
		return ImageBlock, nil
	default:
		return TextBlock, fmt.Errorf("unknown block kind %q", s)
	}
}

// RenderMode selects how a display surface renders a block's result.
type RenderMode int

const (
	RenderPlain RenderMode = iota
	RenderMarkdown
)

func (m RenderMode) String() string {
	if m == RenderMarkdown {
		return "markdown"
	}
	return "plain"
}

// Block is one configured step of a pipeline. It is read-only configuration:
// the executor clones the whole pipeline when a run starts and never mutates
// a block afterwards.
//
// Index is the graph identifier used by edges; ID is a stable opaque identity
// that survives reordering and is used for logging and display correlation.
type Block struct {
	ID               uuid.UUID         `json:"id"`
	Index            int               `json:"index"`
	Kind             BlockKind         `json:"kind"`
	ModelID          string            `json:"model_id"`
	PromptTemplate   string            `json:"prompt_template"`
	LanguageVars     map[string]string `json:"language_vars,omitempty"`
	SelectedLanguage string            `json:"selected_language,omitempty"`
	Streaming        bool              `json:"streaming"`
	JSONMode         bool              `json:"json_mode,omitempty"`
	RenderMode       RenderMode        `json:"render_mode"`
	ShowOverlay      bool              `json:"show_overlay"`
	AutoCopy         bool              `json:"auto_copy"`
	AutoPaste        bool              `json:"auto_paste"`
	AutoPasteNewline bool              `json:"auto_paste_newline"`
	AutoSpeak        bool              `json:"auto_speak"`
}

func (b Block) clone() Block {
	out := b
	if b.LanguageVars != nil {
		out.LanguageVars = make(map[string]string, len(b.LanguageVars))
		for k, v := range b.LanguageVars {
			out.LanguageVars[k] = v
		}
	}
	return out
}

// Edge is one directed connection between two blocks, identified by index.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}
