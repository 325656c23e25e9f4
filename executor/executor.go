// Package executor walks a preset's block graph: it resolves each block's
// prompt, invokes its completion provider (optionally streaming), fires the
// block's side effects, and continues into downstream blocks, spawning
// independent branches wherever a node fans out.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/internal/registry"
	"github.com/strixhq/strix/provider"
	"github.com/strixhq/strix/sink"
)

// Executor runs one pipeline to completion.
type Executor interface {
	Run(ctx context.Context, command RunCommand) error
}

// RunConfig carries the per-run environment. It is passed explicitly into the
// run instead of being read from ambient application state.
type RunConfig struct {
	// Keys are the API keys handed to providers, by provider id.
	Keys provider.APIKeys

	// UILanguage selects the language provider errors are rendered in.
	UILanguage string

	// Models resolves block ModelID references.
	Models registry.Registry[strix.Model]

	// Anchor is the host placement hint forwarded to display surfaces.
	Anchor string

	// ResponseSchema optionally constrains JSON-mode text completions.
	ResponseSchema *jsonschema.Schema

	// PasteSettleDelay is how long the paste side effect waits for window
	// focus to settle before injecting. Zero means no wait.
	PasteSettleDelay time.Duration
}

// RunCommand is one request to execute a pipeline.
type RunCommand struct {
	// ID identifies this run; it also names the pubsub topic events go to.
	ID uuid.UUID

	// Pipeline is the preset's block graph. The executor clones it at run
	// start so later preset edits cannot race the walk.
	Pipeline strix.Pipeline

	// Input is the initial text flowing into the entry blocks.
	Input string

	// Capture is the original captured payload, shared across all branches.
	Capture strix.Capture

	// Cancel is the run's shared abort token. Optional; nil never cancels.
	Cancel *strix.CancelToken

	// Config is the run environment.
	Config RunConfig

	// Hook observes the run's events. Optional.
	Hook pubsub.Hook

	// Pending is the host's "processing" display handle, created before the
	// run (for example at capture time). The walk closes it as soon as a real
	// display takes over, or at end of chain. Optional.
	Pending sink.Handle
}
