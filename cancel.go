package strix

import "sync"

// CancelToken is the shared abort flag for one pipeline run. It is monotonic:
// once cancelled it never resets, and every branch of the run observes it
// cooperatively at its next per-node check. In-flight completion calls have
// their context cancelled but are otherwise left to finish; their results are
// discarded.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel trips the token. Safe to call from any goroutine, any number of times.
func (t *CancelToken) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.done) })
}

// Cancelled reports whether the token has been tripped. A nil token never
// cancels, so callers that do not care about cancellation can pass nil.
func (t *CancelToken) Cancelled() bool {
	if t == nil {
		return false
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token trips, for wiring the token
// into context cancellation. Nil tokens return a channel that never closes.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}
