package sink

import (
	"context"

	"github.com/strixhq/strix/pkg/uuidx"
)

// NoopResult discards all display calls. CreateDisplay still mints unique
// handles so the executor's parent/child bookkeeping stays coherent.
type NoopResult struct{}

func (NoopResult) CreateDisplay(context.Context, DisplayRequest) Handle {
	return Handle(uuidx.NewString())
}
func (NoopResult) UpdateDisplay(context.Context, Handle, string) {}
func (NoopResult) ShowDisplay(context.Context, Handle)           {}
func (NoopResult) SetRefining(context.Context, Handle, bool)     {}
func (NoopResult) CloseDisplay(context.Context, Handle)          {}
func (NoopResult) Link(context.Context, Handle, Handle)          {}

type NoopClipboard struct{}

func (NoopClipboard) CopyText(context.Context, string) error  { return nil }
func (NoopClipboard) CopyImage(context.Context, []byte) error { return nil }

type NoopPaste struct{}

func (NoopPaste) ActiveTarget(context.Context) PasteTarget    { return TargetGeneric }
func (NoopPaste) InjectEditor(context.Context, string) error  { return nil }
func (NoopPaste) SetRefineText(context.Context, string) error { return nil }
func (NoopPaste) Generic(context.Context) error               { return nil }

type NoopSpeech struct{}

func (NoopSpeech) Speak(context.Context, string) error { return nil }

type NoopHistory struct{}

func (NoopHistory) SaveText(context.Context, string) error          { return nil }
func (NoopHistory) SaveImage(context.Context, []byte, string) error { return nil }
