package provider

import "strings"

// WipeSentinel is the reserved prefix a provider may put on a raw chunk to
// discard everything accumulated so far and start over with the remainder of
// the chunk. It exists so a provider can stream a transient placeholder
// ("thinking…"), then wipe it and stream the real answer without the
// placeholder ever leaking into the final result.
const WipeSentinel = "WIPE"

// Chunk is one increment of streamed output. Reset chunks replace the
// accumulated text; plain chunks append to it.
type Chunk struct {
	Text  string
	Reset bool
}

// ChunkFunc receives chunks in the order the provider emits them.
type ChunkFunc func(Chunk)

// ParseChunk converts a raw provider string into a Chunk, honoring the wipe
// sentinel prefix. Everything after the sentinel is the replacement text.
func ParseChunk(raw string) Chunk {
	if rest, ok := strings.CutPrefix(raw, WipeSentinel); ok {
		return Chunk{Text: rest, Reset: true}
	}
	return Chunk{Text: raw}
}

// Apply folds one chunk into the accumulated state and returns the new state.
// It is the pure core of the streaming accumulator.
func Apply(state string, c Chunk) string {
	if c.Reset {
		return c.Text
	}
	return state + c.Text
}
