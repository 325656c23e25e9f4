package executor

import (
	"context"
	"sync"

	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/internal/registry"
	"github.com/strixhq/strix/provider"
	"github.com/strixhq/strix/sink"
)

// fakeProvider scripts one provider's behavior and records every request.
type fakeProvider struct {
	id string

	mu         sync.Mutex
	textCalls  []provider.TextRequest
	imageCalls []provider.ImageRequest

	// chunks are delivered through OnChunk before the call returns
	chunks []string
	result string
	err    error

	// onCall runs before the scripted behavior, for cancel-mid-run tests
	onCall func()
}

func (f *fakeProvider) ID() string {
	if f.id == "" {
		return "fake"
	}
	return f.id
}

func (f *fakeProvider) CompleteText(ctx context.Context, req provider.TextRequest) (string, error) {
	f.mu.Lock()
	f.textCalls = append(f.textCalls, req)
	f.mu.Unlock()
	return f.respond(ctx, req.OnChunk)
}

func (f *fakeProvider) CompleteImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	f.mu.Lock()
	f.imageCalls = append(f.imageCalls, req)
	f.mu.Unlock()
	return f.respond(ctx, req.OnChunk)
}

func (f *fakeProvider) respond(ctx context.Context, onChunk provider.ChunkFunc) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	if onChunk != nil {
		for _, raw := range f.chunks {
			onChunk(provider.ParseChunk(raw))
		}
	}
	return f.result, nil
}

func (f *fakeProvider) textRequests() []provider.TextRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.TextRequest(nil), f.textCalls...)
}

func (f *fakeProvider) imageRequests() []provider.ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.ImageRequest(nil), f.imageCalls...)
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.textCalls) + len(f.imageCalls)
}

type fakeModel struct {
	id   string
	prov provider.Provider
}

func (m fakeModel) ID() string                  { return m.id }
func (m fakeModel) Name() string                { return m.id }
func (m fakeModel) ProviderID() string          { return m.prov.ID() }
func (m fakeModel) Provider() provider.Provider { return m.prov }

func testRegistry(providers map[string]provider.Provider) registry.Registry[strix.Model] {
	reg := registry.New[strix.Model]()
	for id, prov := range providers {
		reg.Add(id, fakeModel{id: id, prov: prov})
	}
	return reg
}

// recordingDisplay records every display interaction, plus a flat sequence log
// for tests that care about ordering across the different calls.
type recordingDisplay struct {
	mu      sync.Mutex
	next    int
	created []sink.DisplayRequest
	updates map[sink.Handle][]string
	shown   []sink.Handle
	closed  []sink.Handle
	links   [][2]sink.Handle
	seq     []string
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{updates: make(map[sink.Handle][]string)}
}

func (r *recordingDisplay) CreateDisplay(_ context.Context, req sink.DisplayRequest) sink.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := sink.Handle(rune('a' + r.next - 1))
	r.created = append(r.created, req)
	r.seq = append(r.seq, "create")
	return h
}

func (r *recordingDisplay) UpdateDisplay(_ context.Context, h sink.Handle, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[h] = append(r.updates[h], text)
	r.seq = append(r.seq, "update:"+text)
}

func (r *recordingDisplay) ShowDisplay(_ context.Context, h sink.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, h)
	r.seq = append(r.seq, "show")
}

func (r *recordingDisplay) SetRefining(_ context.Context, _ sink.Handle, refining bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if refining {
		r.seq = append(r.seq, "refining:on")
	} else {
		r.seq = append(r.seq, "refining:off")
	}
}

func (r *recordingDisplay) CloseDisplay(_ context.Context, h sink.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, h)
}

func (r *recordingDisplay) Link(_ context.Context, parent, child sink.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, [2]sink.Handle{parent, child})
}

func (r *recordingDisplay) lastUpdate(h sink.Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	us := r.updates[h]
	if len(us) == 0 {
		return ""
	}
	return us[len(us)-1]
}

func (r *recordingDisplay) createdCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func (r *recordingDisplay) closedHandles() []sink.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sink.Handle(nil), r.closed...)
}

func (r *recordingDisplay) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seq...)
}

type recordingClipboard struct {
	mu     sync.Mutex
	texts  []string
	images [][]byte
}

func (r *recordingClipboard) CopyText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingClipboard) CopyImage(_ context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, data)
	return nil
}

func (r *recordingClipboard) copied() (texts []string, images [][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...), append([][]byte(nil), r.images...)
}

type recordingPaste struct {
	mu      sync.Mutex
	target  sink.PasteTarget
	injects []string
	refines []string
	generic int
}

func (r *recordingPaste) ActiveTarget(context.Context) sink.PasteTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

func (r *recordingPaste) InjectEditor(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.injects = append(r.injects, text)
	return nil
}

func (r *recordingPaste) SetRefineText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refines = append(r.refines, text)
	return nil
}

func (r *recordingPaste) Generic(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generic++
	return nil
}

type recordingSpeech struct {
	mu     sync.Mutex
	spoken []string
}

func (r *recordingSpeech) Speak(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	return nil
}

type recordingHistory struct {
	mu     sync.Mutex
	texts  []string
	images []string
}

func (r *recordingHistory) SaveText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingHistory) SaveImage(_ context.Context, _ []byte, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, text)
	return nil
}

// recordingHook collects the run's events for assertions.
type recordingHook struct {
	mu        sync.Mutex
	started   []pubsub.NodeStarted
	chunks    []pubsub.Chunk
	completed []pubsub.NodeCompleted
	copied    []pubsub.Copied
	errs      []error
}

func (r *recordingHook) OnNodeStarted(_ context.Context, e pubsub.NodeStarted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, e)
}

func (r *recordingHook) OnChunk(_ context.Context, e pubsub.Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, e)
}

func (r *recordingHook) OnNodeCompleted(_ context.Context, e pubsub.NodeCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, e)
}

func (r *recordingHook) OnCopied(_ context.Context, e pubsub.Copied) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.copied = append(r.copied, e)
}

func (r *recordingHook) OnError(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingHook) completedEvents() []pubsub.NodeCompleted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pubsub.NodeCompleted(nil), r.completed...)
}

func (r *recordingHook) chunkEvents() []pubsub.Chunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pubsub.Chunk(nil), r.chunks...)
}

func (r *recordingHook) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
