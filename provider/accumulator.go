package provider

import "sync"

// Accumulator merges streamed chunks into a running result string. One
// accumulator guards one display's text; streaming callbacks may fire from a
// provider-owned goroutine while the display reads, so access is serialized
// per accumulator rather than with any wider lock.
type Accumulator struct {
	mu   sync.Mutex
	text string
}

// Add folds the chunk into the accumulated text and returns the new value.
// Chunks are applied strictly in call order.
func (a *Accumulator) Add(c Chunk) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = Apply(a.text, c)
	return a.text
}

// AddRaw parses a raw provider string (wipe sentinel included) and folds it in.
func (a *Accumulator) AddRaw(raw string) string {
	return a.Add(ParseChunk(raw))
}

// String returns the current accumulated text.
func (a *Accumulator) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.text
}
