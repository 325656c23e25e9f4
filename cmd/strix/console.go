package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/pkg/uuidx"
	"github.com/strixhq/strix/sink"
)

var palette = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgYellow),
	color.New(color.FgGreen),
	color.New(color.FgBlue),
}

// consoleDisplay renders display surfaces onto one terminal stream: a colored
// header per surface, streamed text as it arrives, and a glamour-rendered
// pass for markdown surfaces once their text is final.
type consoleDisplay struct {
	mu       sync.Mutex
	out      io.Writer
	glam     *glamour.TermRenderer
	surfaces map[sink.Handle]*surface
}

type surface struct {
	req    sink.DisplayRequest
	text   string
	hidden bool
}

func newConsoleDisplay(out io.Writer) *consoleDisplay {
	glam, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		panic(err)
	}
	return &consoleDisplay{
		out:      out,
		glam:     glam,
		surfaces: make(map[sink.Handle]*surface),
	}
}

func (c *consoleDisplay) CreateDisplay(_ context.Context, req sink.DisplayRequest) sink.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := sink.Handle(uuidx.NewString())
	c.surfaces[h] = &surface{req: req, hidden: req.Deferred}
	if !req.Deferred {
		c.header(req)
	}
	return h
}

func (c *consoleDisplay) header(req sink.DisplayRequest) {
	col := palette[req.ColorHint%len(palette)]
	fmt.Fprintf(c.out, "\n%s\n", col.Sprintf("── %s (%s) ──", req.ModelID, req.ProviderID))
}

func (c *consoleDisplay) UpdateDisplay(_ context.Context, h sink.Handle, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.surfaces[h]
	if !ok {
		return
	}
	prev := s.text
	s.text = text
	if s.hidden || s.req.RenderMode == strix.RenderMarkdown {
		// markdown renders once complete; streaming raw markup is noise
		return
	}
	if strings.HasPrefix(text, prev) {
		fmt.Fprint(c.out, text[len(prev):])
		return
	}
	// accumulator reset: start the surface over on a fresh line
	fmt.Fprintf(c.out, "\n%s", text)
}

func (c *consoleDisplay) ShowDisplay(_ context.Context, h sink.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.surfaces[h]
	if !ok || !s.hidden {
		return
	}
	s.hidden = false
	c.header(s.req)
	if s.text != "" && s.req.RenderMode != strix.RenderMarkdown {
		fmt.Fprint(c.out, s.text)
	}
}

func (c *consoleDisplay) SetRefining(_ context.Context, h sink.Handle, refining bool) {
	if refining {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.surfaces[h]
	if !ok || s.hidden {
		return
	}
	if s.req.RenderMode == strix.RenderMarkdown {
		if rendered, err := c.glam.Render(s.text); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
		fmt.Fprint(c.out, s.text)
	}
	fmt.Fprintln(c.out)
}

func (c *consoleDisplay) CloseDisplay(_ context.Context, h sink.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.surfaces, h)
}

func (c *consoleDisplay) Link(context.Context, sink.Handle, sink.Handle) {}

// badgeHook surfaces clipboard badges and run errors on the terminal; the
// rest of the event stream is already visible through the display sink.
type badgeHook struct {
	out io.Writer
}

func newBadgeHook(out io.Writer) pubsub.Hook {
	return &badgeHook{out: out}
}

func (b *badgeHook) OnNodeStarted(context.Context, pubsub.NodeStarted) {}

func (b *badgeHook) OnChunk(context.Context, pubsub.Chunk) {}

func (b *badgeHook) OnNodeCompleted(context.Context, pubsub.NodeCompleted) {}

func (b *badgeHook) OnCopied(_ context.Context, e pubsub.Copied) {
	fmt.Fprintln(b.out, color.HiBlackString("[%s copied]", string(e.Kind)))
}

func (b *badgeHook) OnError(_ context.Context, err error) {
	fmt.Fprintln(b.out, color.RedString("error: %v", err))
}
