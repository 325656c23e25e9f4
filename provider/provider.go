package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

// APIKeys maps a provider identifier to its API key. The executor threads the
// keys through explicitly; providers never read ambient configuration.
type APIKeys map[string]string

// Get returns the key for a provider id, or the empty string.
func (k APIKeys) Get(providerID string) string {
	if k == nil {
		return ""
	}
	return k[providerID]
}

// TextRequest carries everything one text completion call needs.
type TextRequest struct {
	// RunID identifies the pipeline run for tracking and logs.
	RunID uuid.UUID

	// Keys holds the API keys available to the provider.
	Keys APIKeys

	// Input is the text flowing into this block from upstream.
	Input string

	// Prompt is the block's resolved instruction prompt.
	Prompt string

	// Model is the wire-level model name.
	Model string

	// Streaming requests incremental chunks via OnChunk. When false the
	// provider may still call OnChunk once with the complete result.
	Streaming bool

	// JSONMode asks the model for a JSON response.
	JSONMode bool

	// ResponseSchema optionally constrains a JSONMode response to a schema.
	ResponseSchema *jsonschema.Schema

	// OnChunk receives output increments in emission order. May be nil.
	OnChunk ChunkFunc

	// Prevents unkeyed literals
	_ struct{}
}

// ImageRequest carries everything one vision completion call needs.
type ImageRequest struct {
	RunID uuid.UUID
	Keys  APIKeys

	// ImageData is the captured image payload, verbatim.
	ImageData []byte

	Prompt    string
	Model     string
	Streaming bool
	JSONMode  bool
	OnChunk   ChunkFunc

	// Prevents unkeyed literals
	_ struct{}
}

// Provider performs completion calls against one AI service. Both calls
// return the final result text; with Streaming set, the same text is also
// delivered incrementally through OnChunk. Errors are reported with the
// executor's taxonomy where the provider can classify them.
type Provider interface {
	// ID identifies this provider for key lookup and display surfaces.
	ID() string

	CompleteText(context.Context, TextRequest) (string, error)
	CompleteImage(context.Context, ImageRequest) (string, error)
}
