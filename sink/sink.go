// Package sink declares the narrow interfaces through which the graph
// executor reaches its external collaborators: display surfaces, clipboard,
// paste injection, speech synthesis, and history persistence.
//
// Concrete implementations live with the host application (windowing,
// clipboard and TTS are platform concerns); the executor only ever sees these
// interfaces. No-op implementations are provided for hosts that do not wire a
// given integration.
package sink

import (
	"context"

	"github.com/strixhq/strix"
)

// Handle identifies one display surface. Handles are opaque to the executor:
// they are only passed back into the Result sink and linked parent-to-child
// for UI feedback, never used for control flow.
type Handle string

// NoHandle is the absent display handle.
const NoHandle Handle = ""

// DisplayRequest carries everything a Result sink needs to create a surface
// for one block's output.
type DisplayRequest struct {
	// Anchor is a host-defined placement hint (screen position, originating
	// window), opaque to the executor.
	Anchor string

	// Capture is the run's original payload, for surfaces that preview it.
	Capture strix.Capture

	ModelID    string
	ProviderID string
	Streaming  bool
	Prompt     string

	// ColorHint is the block's visibility ordinal, used only for theming.
	ColorHint int

	RenderMode strix.RenderMode

	// Deferred asks the sink to create the surface hidden; the executor shows
	// it when the first output chunk arrives so an empty window never flashes.
	Deferred bool
}

// Result is the display surface collaborator. Implementations must tolerate
// calls for handles they no longer know about; branches may race a close
// against a late streaming update.
type Result interface {
	CreateDisplay(ctx context.Context, req DisplayRequest) Handle
	UpdateDisplay(ctx context.Context, h Handle, text string)
	// ShowDisplay reveals a surface created with Deferred set.
	ShowDisplay(ctx context.Context, h Handle)
	// SetRefining toggles the "still thinking" affordance on a surface.
	SetRefining(ctx context.Context, h Handle, refining bool)
	CloseDisplay(ctx context.Context, h Handle)
	// Link associates a child surface with the surface of the block that
	// produced its input.
	Link(ctx context.Context, parent, child Handle)
}

// Clipboard writes text or image data to the system clipboard.
type Clipboard interface {
	CopyText(ctx context.Context, text string) error
	CopyImage(ctx context.Context, data []byte) error
}

// PasteTarget reports which paste surface is currently active.
type PasteTarget int

const (
	// TargetGeneric means no special surface is active; paste goes to the
	// last known target window.
	TargetGeneric PasteTarget = iota
	// TargetEditor means a live text-editing surface has focus.
	TargetEditor
	// TargetRefineField means a refine input surface is active.
	TargetRefineField
)

// Paste injects produced text into the user's active surface.
type Paste interface {
	// ActiveTarget probes which surface a paste should go to.
	ActiveTarget(ctx context.Context) PasteTarget
	// InjectEditor types text directly into the live editor and refocuses it.
	InjectEditor(ctx context.Context, text string) error
	// SetRefineText replaces the refine field's content.
	SetRefineText(ctx context.Context, text string) error
	// Generic performs a plain paste of the current clipboard content into
	// the last known target.
	Generic(ctx context.Context) error
}

// Speech requests speech synthesis of produced text.
type Speech interface {
	Speak(ctx context.Context, text string) error
}

// History persists produced results.
type History interface {
	SaveText(ctx context.Context, text string) error
	SaveImage(ctx context.Context, data []byte, text string) error
}
