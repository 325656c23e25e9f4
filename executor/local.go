package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/pkg/slogx"
	"github.com/strixhq/strix/pkg/uuidx"
	"github.com/strixhq/strix/prompt"
	"github.com/strixhq/strix/provider"
	"github.com/strixhq/strix/provider/models"
	"github.com/strixhq/strix/sink"
	"golang.org/x/sync/semaphore"
)

var _ Executor = &Local{}

// defaultMaxParallelBranches bounds how many spawned branches run at once.
// The gate replaces the fixed per-branch start stagger older versions used to
// avoid bursts of concurrent display and model creation.
const defaultMaxParallelBranches = 4

// Local executes pipelines in-process: the entry block runs on the calling
// worker, the first successor of every node continues inline, and each
// additional successor becomes an independent branch goroutine sharing the
// run's cancel token.
type Local struct {
	broker    pubsub.Broker
	display   sink.Result
	history   sink.History
	effects   dispatcher
	gate      *semaphore.Weighted
	gateSlots int64
}

// WithDisplay wires the display surface collaborator.
func WithDisplay(r sink.Result) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		o.display = r
		return nil
	})
}

// WithClipboard wires the clipboard collaborator.
func WithClipboard(c sink.Clipboard) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		o.effects.clipboard = c
		return nil
	})
}

// WithPaste wires the paste collaborator.
func WithPaste(p sink.Paste) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		o.effects.paste = p
		return nil
	})
}

// WithSpeech wires the speech synthesis collaborator.
func WithSpeech(s sink.Speech) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		o.effects.speech = s
		return nil
	})
}

// WithHistory wires the history persistence collaborator.
func WithHistory(h sink.History) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		o.history = h
		return nil
	})
}

// WithMaxParallelBranches sizes the branch-start gate.
func WithMaxParallelBranches(n int64) opts.Option[Local] {
	return opts.Type[Local](func(o *Local) error {
		if n < 1 {
			return fmt.Errorf("max parallel branches must be at least 1, got %d", n)
		}
		o.gateSlots = n
		return nil
	})
}

func NewLocal(broker pubsub.Broker, options ...opts.Option[Local]) (*Local, error) {
	if broker == nil {
		return nil, fmt.Errorf("broker cannot be nil")
	}
	l := &Local{
		broker:  broker,
		display: sink.NoopResult{},
		history: sink.NoopHistory{},
		effects: dispatcher{
			clipboard: sink.NoopClipboard{},
			paste:     sink.NoopPaste{},
			speech:    sink.NoopSpeech{},
		},
		gateSlots: defaultMaxParallelBranches,
	}
	if err := opts.Apply(l, options); err != nil {
		return nil, err
	}
	l.gate = semaphore.NewWeighted(l.gateSlots)
	return l, nil
}

// Run executes the pipeline and blocks until every branch and every async
// side effect has finished. Cancelling the command's token (or ctx) stops the
// walk at each branch's next per-node check; in-flight completion calls have
// their context cancelled and their results discarded.
func (l *Local) Run(ctx context.Context, command RunCommand) error {
	if len(command.Pipeline.Blocks) == 0 {
		l.closePending(ctx, command.Pending)
		return fmt.Errorf("pipeline has no blocks")
	}
	if err := command.Pipeline.Validate(); err != nil {
		l.closePending(ctx, command.Pending)
		return fmt.Errorf("invalid pipeline: %w", err)
	}
	if command.ID == uuid.Nil {
		command.ID = uuidx.New()
	}
	if command.Config.Models == nil {
		command.Config.Models = models.Global
	}

	topic := l.broker.Topic(ctx, command.ID.String())
	if command.Hook != nil {
		sub, err := topic.Subscribe(ctx, command.Hook)
		if err != nil {
			l.closePending(ctx, command.Pending)
			return fmt.Errorf("failed to subscribe to topic: %w", err)
		}
		defer sub.Unsubscribe()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if command.Cancel != nil {
		go func() {
			select {
			case <-command.Cancel.Done():
				cancel()
			case <-runCtx.Done():
			}
		}()
	}

	scope := &runScope{
		l:        l,
		runID:    command.ID,
		pipeline: command.Pipeline.Clone(),
		cfg:      command.Config,
		cancel:   command.Cancel,
		topic:    topic,
		wg:       &sync.WaitGroup{},
	}

	roots := scope.pipeline.Roots()
	if len(roots) == 0 {
		l.closePending(ctx, command.Pending)
		return fmt.Errorf("pipeline has no entry block")
	}

	// The run begins on this worker; additional roots become branches.
	for _, root := range roots[1:] {
		scope.branch(runCtx, root, command.Input, command.Capture, sink.NoHandle, sink.NoHandle)
	}
	scope.runNode(runCtx, roots[0], command.Input, command.Capture, command.Pending, sink.NoHandle)

	scope.wg.Wait()
	return nil
}

// runScope is the shared state of one run: every branch sees the same cloned
// pipeline, config, topic, and cancel token.
type runScope struct {
	l        *Local
	runID    uuid.UUID
	pipeline strix.Pipeline
	cfg      RunConfig
	cancel   *strix.CancelToken
	topic    pubsub.Topic
	wg       *sync.WaitGroup
}

func (s *runScope) cancelled(ctx context.Context) bool {
	return s.cancel.Cancelled() || ctx.Err() != nil
}

func (s *runScope) closeHandle(ctx context.Context, h sink.Handle) {
	if h != sink.NoHandle {
		s.l.display.CloseDisplay(ctx, h)
	}
}

// branch starts an independent continuation for one extra downstream edge.
// The gate bounds how many spawned branches execute at once; a branch that
// cannot acquire a slot before cancellation just cleans up its handle.
func (s *runScope) branch(ctx context.Context, node int, input string, capture strix.Capture, pending, parent sink.Handle) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.l.gate.Acquire(ctx, 1); err != nil {
			s.closeHandle(ctx, pending)
			return
		}
		defer s.l.gate.Release(1)
		s.runNode(ctx, node, input, capture, pending, parent)
	}()
}

// runState is the per-node-invocation state: the accumulated result text and
// whether the node's display has been revealed yet. It also owns the pending
// "processing" handle inherited from the caller, so the streaming callback
// and the post-completion path agree on who closes it.
type runState struct {
	acc provider.Accumulator

	mu       sync.Mutex
	revealed bool
	pending  sink.Handle
}

// firstOutput reports true exactly once, on the node's first output.
func (st *runState) firstOutput() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.revealed {
		return false
	}
	st.revealed = true
	return true
}

// takePending transfers ownership of the inherited processing handle.
func (st *runState) takePending() sink.Handle {
	st.mu.Lock()
	defer st.mu.Unlock()
	h := st.pending
	st.pending = sink.NoHandle
	return h
}

// runNode executes one block and continues into its downstream nodes: the
// first successor inline on this worker, every additional successor as an
// independent branch.
func (s *runScope) runNode(ctx context.Context, node int, input string, capture strix.Capture, pending, parent sink.Handle) {
	if s.cancelled(ctx) {
		s.closeHandle(ctx, pending)
		return
	}
	if node < 0 || node >= len(s.pipeline.Blocks) {
		// end of chain
		s.closeHandle(ctx, pending)
		return
	}

	block := s.pipeline.Blocks[node]
	isAdapter := block.Kind == strix.InputAdapter

	var model strix.Model
	if !isAdapter {
		m, ok := s.cfg.Models.Get(block.ModelID)
		if !ok {
			err := fmt.Errorf("%w: %q", ErrUnknownModel, block.ModelID)
			slog.ErrorContext(ctx, "aborting branch", slogx.Error(err), slog.Int("block", node))
			s.publishErr(ctx, node, err)
			s.closeHandle(ctx, pending)
			return
		}
		model = m
	}

	resolved := prompt.Resolve(block.PromptTemplate, block.LanguageVars, block.SelectedLanguage)

	_ = s.topic.Publish(ctx, pubsub.NodeStarted{
		RunID:     s.runID,
		Block:     node,
		ModelID:   block.ModelID,
		Timestamp: strfmt.DateTime(time.Now()),
	})

	// Image displays stay hidden until the first chunk arrives so an empty
	// window never flashes before data exists.
	deferred := block.Kind == strix.ImageBlock

	st := &runState{pending: pending}
	handle := sink.NoHandle
	if block.ShowOverlay {
		handle = s.l.display.CreateDisplay(ctx, sink.DisplayRequest{
			Anchor:     s.cfg.Anchor,
			Capture:    capture,
			ModelID:    block.ModelID,
			ProviderID: providerID(model),
			Streaming:  block.Streaming,
			Prompt:     resolved,
			ColorHint:  s.pipeline.VisibilityOrdinal(node),
			RenderMode: block.RenderMode,
			Deferred:   deferred,
		})
		if parent != sink.NoHandle && handle != sink.NoHandle {
			s.l.display.Link(ctx, parent, handle)
		}
		if !isAdapter {
			s.l.display.SetRefining(ctx, handle, true)
		}
		if !deferred {
			// the real display replaces the caller's processing indicator
			s.closeHandle(ctx, st.takePending())
		}
	}
	// Hidden nodes keep the caller's processing handle open so the user
	// still sees activity while this node works.

	onChunk := func(c provider.Chunk) {
		text := st.acc.Add(c)
		if st.firstOutput() {
			s.reveal(ctx, st, handle, deferred)
		}
		if handle != sink.NoHandle {
			s.l.display.UpdateDisplay(ctx, handle, text)
		}
		_ = s.topic.Publish(ctx, pubsub.Chunk{
			RunID:       s.runID,
			Block:       node,
			Delta:       c.Text,
			Accumulated: text,
			Timestamp:   strfmt.DateTime(time.Now()),
		})
	}

	var result string
	var errored bool
	switch block.Kind {
	case strix.InputAdapter:
		// pass-through: input text flows on unchanged, no provider call
		result = input
		if handle != sink.NoHandle {
			s.l.display.UpdateDisplay(ctx, handle, result)
		}

	case strix.ImageBlock:
		if !capture.IsImage() {
			slog.ErrorContext(ctx, "aborting branch", slogx.Error(ErrMissingContext), slog.Int("block", node))
			s.publishErr(ctx, node, ErrMissingContext)
			s.closeHandle(ctx, handle)
			s.closeHandle(ctx, st.takePending())
			return
		}
		out, err := model.Provider().CompleteImage(ctx, provider.ImageRequest{
			RunID:     s.runID,
			Keys:      s.cfg.Keys,
			ImageData: capture.Data,
			Prompt:    resolved,
			Model:     model.Name(),
			Streaming: block.Streaming,
			JSONMode:  block.JSONMode,
			OnChunk:   onChunk,
		})
		result, errored = s.finishCall(ctx, node, st, handle, deferred, out, err)
		if result == "" && errored {
			return
		}

	case strix.TextBlock:
		out, err := model.Provider().CompleteText(ctx, provider.TextRequest{
			RunID:          s.runID,
			Keys:           s.cfg.Keys,
			Input:          input,
			Prompt:         resolved,
			Model:          model.Name(),
			Streaming:      block.Streaming,
			JSONMode:       block.JSONMode,
			ResponseSchema: s.cfg.ResponseSchema,
			OnChunk:        onChunk,
		})
		result, errored = s.finishCall(ctx, node, st, handle, deferred, out, err)
		if result == "" && errored {
			return
		}
	}

	// A provider that produced its result without a single callback still
	// owes the display the first-output transition and the final text.
	if !isAdapter && !errored && st.firstOutput() {
		s.reveal(ctx, st, handle, deferred)
		if handle != sink.NoHandle {
			s.l.display.UpdateDisplay(ctx, handle, result)
		}
	}

	_ = s.topic.Publish(ctx, pubsub.NodeCompleted{
		RunID:     s.runID,
		Block:     node,
		Result:    result,
		Errored:   errored,
		Timestamp: strfmt.DateTime(time.Now()),
	})

	// A failed node still completes with its error text as output, so side
	// effects and history run regardless of errored.
	s.l.effects.dispatch(ctx, dispatchParams{
		topic:   s.topic,
		runID:   s.runID,
		block:   block,
		result:  result,
		capture: capture,
		settle:  s.cfg.PasteSettleDelay,
		wg:      s.wg,
	})

	if block.ShowOverlay && strings.TrimSpace(result) != "" {
		var err error
		if block.Kind == strix.ImageBlock && capture.IsImage() {
			err = s.l.history.SaveImage(ctx, capture.Data, result)
		} else {
			err = s.l.history.SaveText(ctx, result)
		}
		if err != nil {
			slog.WarnContext(ctx, "history save failed", slogx.Error(err))
		}
	}

	if s.cancelled(ctx) {
		s.closeHandle(ctx, st.takePending())
		return
	}

	// Error text and empty results are terminal for this branch.
	if errored || (!isAdapter && strings.TrimSpace(result) == "") {
		s.closeHandle(ctx, st.takePending())
		return
	}

	downstream := s.pipeline.Downstream(node)
	if len(downstream) == 0 {
		s.closeHandle(ctx, st.takePending())
		return
	}

	// Media bytes flow only through adapter chains.
	childCapture := strix.NoCapture
	if isAdapter {
		childCapture = capture
	}
	childParent := handle
	if childParent == sink.NoHandle {
		childParent = parent
	}

	for _, to := range downstream[1:] {
		s.branch(ctx, to, result, childCapture, sink.NoHandle, childParent)
	}
	s.runNode(ctx, downstream[0], result, childCapture, st.takePending(), childParent)
}

// finishCall folds a provider call's outcome into the node's terminal result.
// Provider failures become localized result text and never propagate up the
// walk; cancellation cleans up silently and reports an empty errored result.
func (s *runScope) finishCall(ctx context.Context, node int, st *runState, handle sink.Handle, deferred bool, out string, err error) (string, bool) {
	if err == nil {
		return out, false
	}
	if s.cancelled(ctx) || errors.Is(err, context.Canceled) {
		s.closeHandle(ctx, st.takePending())
		return "", true
	}

	s.publishErr(ctx, node, err)
	text := localizeProviderError(err, s.cfg.UILanguage)
	// make sure the error is visible even if no chunk ever arrived
	if st.firstOutput() {
		s.reveal(ctx, st, handle, deferred)
	}
	if handle != sink.NoHandle {
		s.l.display.UpdateDisplay(ctx, handle, text)
	}
	return text, true
}

// reveal runs the first-output display transition: a deferred surface is
// shown, the refining affordance comes off, and the inherited processing
// indicator is retired. Hidden nodes keep the indicator open; it travels on
// to their downstream nodes instead.
func (s *runScope) reveal(ctx context.Context, st *runState, handle sink.Handle, deferred bool) {
	if handle == sink.NoHandle {
		return
	}
	if deferred {
		s.l.display.ShowDisplay(ctx, handle)
	}
	s.l.display.SetRefining(ctx, handle, false)
	s.closeHandle(ctx, st.takePending())
}

func (s *runScope) publishErr(ctx context.Context, node int, err error) {
	_ = s.topic.Publish(ctx, pubsub.Error{
		RunID:     s.runID,
		Block:     node,
		Err:       err,
		Timestamp: strfmt.DateTime(time.Now()),
	})
}

// closePending retires the caller's processing indicator on paths that never
// reach the walk.
func (l *Local) closePending(ctx context.Context, h sink.Handle) {
	if h != sink.NoHandle {
		l.display.CloseDisplay(ctx, h)
	}
}

func providerID(m strix.Model) string {
	if m == nil {
		return ""
	}
	return m.ProviderID()
}
