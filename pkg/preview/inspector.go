package preview

import (
	"context"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// State is the inspector's display state.
type State string

const (
	StateIdle       State = "idle"
	StateAwaiting   State = "awaiting_response"
	StateStructured State = "displaying_structured"
	StateText       State = "displaying_text"
)

// Snapshot is a point-in-time view of an Inspector.
type Snapshot struct {
	State    State   `json:"state"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`   // latest outcome was a transport failure
	Shown    uint64  `json:"shown_invocation"`  // invocation whose outcome is displayed (0 = none)
	Issued   uint64  `json:"issued_invocation"` // most recently started invocation
	InFlight int     `json:"in_flight"`         // invocations still awaiting a response
	Stale    bool    `json:"stale"`             // a newer invocation than Shown is in flight
}

// Inspector tracks preview invocations and the outcome on display.
//
// Transitions: Begin moves to awaiting; Resolve moves to a displaying state;
// Fail returns to idle and clears the displayed result. Any state accepts a
// new Begin. Outcomes are displayed in the order they resolve, so an older
// invocation that resolves late replaces a newer one; Snapshot.Stale exposes
// that case instead of hiding it.
//
// Inspector is safe for concurrent use: responses may arrive while the editor
// keeps taking input.
type Inspector struct {
	mu       sync.Mutex
	state    State
	result   *Result
	lastErr  error
	issued   uint64
	shown    uint64
	inFlight *roaring64.Bitmap
}

// NewInspector returns an idle inspector.
func NewInspector() *Inspector {
	return &Inspector{
		state:    StateIdle,
		inFlight: roaring64.New(),
	}
}

// Begin records a new invocation and returns its sequence number.
func (i *Inspector) Begin() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.issued++
	i.inFlight.Add(i.issued)
	i.state = StateAwaiting
	return i.issued
}

// Resolve displays the outcome of invocation seq.
func (i *Inspector) Resolve(seq uint64, res *Result) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.inFlight.Remove(seq)
	i.result = res
	i.lastErr = nil
	i.shown = seq
	if res != nil && res.Kind == KindStructured {
		i.state = StateStructured
	} else {
		i.state = StateText
	}
}

// Fail records a transport failure for invocation seq.
func (i *Inspector) Fail(seq uint64, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.inFlight.Remove(seq)
	i.result = nil
	i.lastErr = err
	i.shown = seq
	if !i.inFlight.IsEmpty() {
		i.state = StateAwaiting
		return
	}
	i.state = StateIdle
}

// Snapshot returns the current view.
func (i *Inspector) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	s := Snapshot{
		State:    i.state,
		Result:   i.result,
		Shown:    i.shown,
		Issued:   i.issued,
		InFlight: int(i.inFlight.GetCardinality()),
	}
	if i.lastErr != nil {
		s.Error = i.lastErr.Error()
	}
	s.Stale = !i.inFlight.IsEmpty() && i.inFlight.Maximum() > i.shown
	return s
}

// Run executes req through ex and records the outcome. It blocks until the
// executor returns; the transport error, if any, is returned unchanged.
func (i *Inspector) Run(ctx context.Context, ex Executor, req Request) (uint64, *Result, error) {
	seq := i.Begin()
	res, err := ex.Execute(ctx, req)
	if err != nil {
		i.Fail(seq, err)
		return seq, nil, err
	}
	i.Resolve(seq, res)
	return seq, res, nil
}
