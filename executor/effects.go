package executor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/pkg/slogx"
	"github.com/strixhq/strix/sink"
)

// dispatcher fires a block's copy/paste/speak side effects once its result is
// final. Clipboard writes complete inline, before any paste that depends on
// their content; paste and speech run on their own goroutines so the graph
// walk never blocks on them.
type dispatcher struct {
	clipboard sink.Clipboard
	paste     sink.Paste
	speech    sink.Speech
}

type dispatchParams struct {
	topic   pubsub.Topic
	runID   uuid.UUID
	block   strix.Block
	result  string
	capture strix.Capture
	settle  time.Duration
	// wg tracks the async side effects so the run can drain them on exit.
	wg *sync.WaitGroup
}

func (d *dispatcher) dispatch(ctx context.Context, p dispatchParams) {
	isAdapter := p.block.Kind == strix.InputAdapter
	trimmed := strings.TrimSpace(p.result)

	var copiedText, copiedImage bool
	if p.block.AutoCopy {
		if isAdapter && p.capture.IsImage() {
			if err := d.clipboard.CopyImage(ctx, p.capture.Data); err != nil {
				slog.WarnContext(ctx, "image copy failed", slogx.Error(err))
			} else {
				copiedImage = true
			}
		}
		if trimmed != "" {
			if err := d.clipboard.CopyText(ctx, p.result); err != nil {
				slog.WarnContext(ctx, "text copy failed", slogx.Error(err))
			} else {
				copiedText = true
			}
		}

		// One badge per node, preferring the text notification.
		switch {
		case copiedText:
			d.notifyCopied(ctx, p, pubsub.CopiedText)
		case copiedImage:
			d.notifyCopied(ctx, p, pubsub.CopiedImage)
		}
	}

	if p.block.AutoPaste {
		textPaste := trimmed != "" && !isAdapter
		imagePaste := isAdapter && copiedImage
		if textPaste || imagePaste {
			pureImage := imagePaste && trimmed == ""
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				d.doPaste(ctx, p.block, p.result, pureImage, p.settle)
			}()
		}
	}

	if p.block.AutoSpeak && trimmed != "" {
		text := p.result
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := d.speech.Speak(ctx, text); err != nil {
				slog.WarnContext(ctx, "speech synthesis failed", slogx.Error(err))
			}
		}()
	}
}

func (d *dispatcher) notifyCopied(ctx context.Context, p dispatchParams, kind pubsub.CopiedKind) {
	if p.topic == nil {
		return
	}
	_ = p.topic.Publish(ctx, pubsub.Copied{
		RunID:     p.runID,
		Block:     p.block.Index,
		Kind:      kind,
		Timestamp: strfmt.DateTime(time.Now()),
	})
}

// doPaste waits for focus to settle, then routes the paste: a live editor
// gets the text injected directly (with the optional trailing newline), a
// refine field gets its content replaced, anything else gets a generic paste
// of the clipboard into the last known target. A pure image paste always
// takes the generic path since there is no text to inject.
func (d *dispatcher) doPaste(ctx context.Context, block strix.Block, result string, pureImage bool, settle time.Duration) {
	if settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return
		}
	}

	if pureImage {
		if err := d.paste.Generic(ctx); err != nil {
			slog.WarnContext(ctx, "paste failed", slogx.Error(err))
		}
		return
	}

	var err error
	switch d.paste.ActiveTarget(ctx) {
	case sink.TargetEditor:
		text := result
		if block.AutoPasteNewline {
			text += "\n"
		}
		err = d.paste.InjectEditor(ctx, text)
	case sink.TargetRefineField:
		err = d.paste.SetRefineText(ctx, result)
	default:
		err = d.paste.Generic(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "paste failed", slogx.Error(err))
	}
}
