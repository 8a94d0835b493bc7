package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	res *Result
	err error
}

func (s stubExecutor) Execute(_ context.Context, _ Request) (*Result, error) {
	return s.res, s.err
}

func TestInspector_Lifecycle(t *testing.T) {
	insp := NewInspector()
	assert.Equal(t, StateIdle, insp.Snapshot().State)

	seq := insp.Begin()
	snap := insp.Snapshot()
	assert.Equal(t, StateAwaiting, snap.State)
	assert.Equal(t, 1, snap.InFlight)
	assert.Equal(t, uint64(1), snap.Issued)

	insp.Resolve(seq, &Result{Kind: KindStructured, Data: map[string]any{"x": float64(1)}})
	snap = insp.Snapshot()
	assert.Equal(t, StateStructured, snap.State)
	assert.Equal(t, 0, snap.InFlight)
	assert.Equal(t, seq, snap.Shown)
	assert.False(t, snap.Stale)

	seq = insp.Begin()
	insp.Resolve(seq, &Result{Kind: KindText, Text: "oops"})
	snap = insp.Snapshot()
	assert.Equal(t, StateText, snap.State)
	assert.Equal(t, "oops", snap.Result.Text)
}

func TestInspector_FailClearsResult(t *testing.T) {
	insp := NewInspector()
	seq := insp.Begin()
	insp.Resolve(seq, &Result{Kind: KindText, Text: "old"})

	seq = insp.Begin()
	insp.Fail(seq, errors.New("connection refused"))
	snap := insp.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, "connection refused", snap.Error)
}

func TestInspector_ErrorClearedOnResolve(t *testing.T) {
	insp := NewInspector()
	insp.Fail(insp.Begin(), errors.New("boom"))
	insp.Resolve(insp.Begin(), &Result{Kind: KindStructured})
	assert.Empty(t, insp.Snapshot().Error)
}

func TestInspector_OverlappingInvocations(t *testing.T) {
	insp := NewInspector()
	first := insp.Begin()
	second := insp.Begin()

	insp.Resolve(second, &Result{Kind: KindText, Text: "second"})
	snap := insp.Snapshot()
	assert.Equal(t, "second", snap.Result.Text)
	assert.False(t, snap.Stale, "only an older invocation is pending")
	assert.Equal(t, 1, snap.InFlight)

	// The older response lands last and is displayed; a newer one is no longer pending.
	insp.Resolve(first, &Result{Kind: KindText, Text: "first"})
	snap = insp.Snapshot()
	assert.Equal(t, "first", snap.Result.Text)
	assert.Equal(t, first, snap.Shown)
	assert.Equal(t, second, snap.Issued)
	assert.False(t, snap.Stale)
}

func TestInspector_StaleWhileNewerInFlight(t *testing.T) {
	insp := NewInspector()
	first := insp.Begin()
	insp.Begin()

	insp.Resolve(first, &Result{Kind: KindText, Text: "first"})
	snap := insp.Snapshot()
	assert.True(t, snap.Stale)
	assert.Equal(t, StateText, snap.State)
}

func TestInspector_FailWithOthersInFlight(t *testing.T) {
	insp := NewInspector()
	first := insp.Begin()
	insp.Begin()

	insp.Fail(first, errors.New("timeout"))
	assert.Equal(t, StateAwaiting, insp.Snapshot().State)
}

func TestInspector_Run(t *testing.T) {
	insp := NewInspector()

	seq, res, err := insp.Run(context.Background(), stubExecutor{res: &Result{Kind: KindStructured, Data: []any{}}}, Request{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, KindStructured, res.Kind)
	assert.Equal(t, StateStructured, insp.Snapshot().State)

	wantErr := errors.New("unreachable")
	seq, res, err = insp.Run(context.Background(), stubExecutor{err: wantErr}, Request{})
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, res)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, StateIdle, insp.Snapshot().State)
}
