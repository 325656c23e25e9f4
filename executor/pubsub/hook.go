package pubsub

import (
	"context"
	"log/slog"
	"slices"

	"github.com/strixhq/strix/pkg/slogx"
)

// Hook receives the events of one run. The interface deliberately ships no
// embedded no-op base: every implementation makes an explicit decision about
// each event type, so adding an event breaks consumers at compile time
// instead of silently dropping data.
type Hook interface {
	OnNodeStarted(context.Context, NodeStarted)

	OnChunk(context.Context, Chunk)

	OnNodeCompleted(context.Context, NodeCompleted)

	OnCopied(context.Context, Copied)

	OnError(context.Context, error)
}

// LoggingHook writes every event to slog. Useful as a debugging subscriber
// and as the always-on observer in headless runs.
func LoggingHook() Hook {
	return &loggingHook{}
}

type loggingHook struct{}

func (loggingHook) OnNodeStarted(ctx context.Context, e NodeStarted) {
	slog.InfoContext(ctx, "node started", slogx.Block(e.Block, e.ModelID), slog.String("run_id", e.RunID.String()))
}

func (loggingHook) OnChunk(ctx context.Context, e Chunk) {
	slog.DebugContext(ctx, "chunk", slog.Int("block", e.Block), slog.Int("accumulated_len", len(e.Accumulated)))
}

func (loggingHook) OnNodeCompleted(ctx context.Context, e NodeCompleted) {
	slog.InfoContext(ctx, "node completed", slog.Int("block", e.Block), slog.Bool("errored", e.Errored))
}

func (loggingHook) OnCopied(ctx context.Context, e Copied) {
	slog.InfoContext(ctx, "copied to clipboard", slog.Int("block", e.Block), slog.String("kind", string(e.Kind)))
}

func (loggingHook) OnError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "run error", slogx.Error(err))
}

func NewCompositeHook(hooks ...Hook) Hook {
	return CompositeHook(hooks)
}

// CompositeHook combines multiple hooks into one subscriber.
type CompositeHook []Hook

func (c CompositeHook) OnNodeStarted(ctx context.Context, e NodeStarted) {
	for h := range slices.Values(c) {
		h.OnNodeStarted(ctx, e)
	}
}

func (c CompositeHook) OnChunk(ctx context.Context, e Chunk) {
	for h := range slices.Values(c) {
		h.OnChunk(ctx, e)
	}
}

func (c CompositeHook) OnNodeCompleted(ctx context.Context, e NodeCompleted) {
	for h := range slices.Values(c) {
		h.OnNodeCompleted(ctx, e)
	}
}

func (c CompositeHook) OnCopied(ctx context.Context, e Copied) {
	for h := range slices.Values(c) {
		h.OnCopied(ctx, e)
	}
}

func (c CompositeHook) OnError(ctx context.Context, err error) {
	for h := range slices.Values(c) {
		h.OnError(ctx, err)
	}
}
