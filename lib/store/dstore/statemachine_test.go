package dstore

import (
	"bytes"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newTestStateMachine() *CounterStateMachine {
	return CreateStateMachineFactory()(1, 1).(*CounterStateMachine)
}

func incrEntry(index uint64, key string, delta int64) sm.Entry {
	cmd := internal.Command{Type: internal.CommandTIncr, Key: key, Delta: delta}
	return sm.Entry{Index: index, Cmd: cmd.Serialize()}
}

func lookup(t *testing.T, fsm *CounterStateMachine, key string) internal.QueryResult {
	t.Helper()
	res, err := fsm.Lookup(internal.Query{Type: internal.QueryTGet, Key: key})
	require.NoError(t, err)
	return res.(internal.QueryResult)
}

func TestStateMachineUpdate(t *testing.T) {
	fsm := newTestStateMachine()

	entries, err := fsm.Update([]sm.Entry{
		incrEntry(1, "page1", 3),
		incrEntry(2, "page2", 1),
		incrEntry(3, "page1", 2),
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	totals := []int64{3, 1, 5}
	for i, e := range entries {
		assert.Equal(t, uint64(store.RetCSuccess), e.Result.Value)
		total, err := internal.DecodeTotal(e.Result.Data)
		require.NoError(t, err)
		assert.Equal(t, totals[i], total)
	}

	assert.Equal(t, internal.QueryResult{Ok: true, Total: 5}, lookup(t, fsm, "page1"))
	assert.Equal(t, internal.QueryResult{Ok: true, Total: 1}, lookup(t, fsm, "page2"))
	assert.Equal(t, internal.QueryResult{Ok: false, Total: 0}, lookup(t, fsm, "missing"))
}

func TestStateMachineInvalidEntries(t *testing.T) {
	fsm := newTestStateMachine()

	entries, err := fsm.Update([]sm.Entry{
		{Index: 1, Cmd: nil},
		{Index: 2, Cmd: []byte{1, 2, 3}},
		{Index: 3, Cmd: (&internal.Command{Type: internal.CommandType(42), Key: "k"}).Serialize()},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(store.RetCInvalidOperation), entries[0].Result.Value)
	assert.Equal(t, uint64(store.RetCInternalError), entries[1].Result.Value)
	assert.Equal(t, uint64(store.RetCInvalidOperation), entries[2].Result.Value)
	assert.False(t, lookup(t, fsm, "k").Ok)
}

func TestStateMachineLookupInvalidQuery(t *testing.T) {
	fsm := newTestStateMachine()

	_, err := fsm.Lookup("not a query")
	require.Error(t, err)

	_, err = fsm.Lookup(internal.Query{Type: internal.QueryType(9), Key: "k"})
	require.Error(t, err)
}

func TestStateMachineSnapshot(t *testing.T) {
	fsm := newTestStateMachine()
	_, err := fsm.Update([]sm.Entry{
		incrEntry(1, "page1", 10),
		incrEntry(2, "page2", 20),
		incrEntry(3, "", 1),
	})
	require.NoError(t, err)

	ctx, err := fsm.PrepareSnapshot()
	require.NoError(t, err)

	// changes after PrepareSnapshot are not part of the snapshot
	_, err = fsm.Update([]sm.Entry{incrEntry(4, "page1", 100)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fsm.SaveSnapshot(ctx, &buf, nil, make(chan struct{})))

	restored := newTestStateMachine()
	_, err = restored.Update([]sm.Entry{incrEntry(1, "stale", 1)})
	require.NoError(t, err)

	require.NoError(t, restored.RecoverFromSnapshot(&buf, nil, make(chan struct{})))

	assert.Equal(t, internal.QueryResult{Ok: true, Total: 10}, lookup(t, restored, "page1"))
	assert.Equal(t, internal.QueryResult{Ok: true, Total: 20}, lookup(t, restored, "page2"))
	assert.Equal(t, internal.QueryResult{Ok: true, Total: 1}, lookup(t, restored, ""))
	assert.False(t, lookup(t, restored, "stale").Ok)
}

func TestStateMachineSnapshotStopped(t *testing.T) {
	fsm := newTestStateMachine()
	_, err := fsm.Update([]sm.Entry{incrEntry(1, "page1", 1)})
	require.NoError(t, err)

	ctx, err := fsm.PrepareSnapshot()
	require.NoError(t, err)

	done := make(chan struct{})
	close(done)

	var buf bytes.Buffer
	assert.ErrorIs(t, fsm.SaveSnapshot(ctx, &buf, nil, done), sm.ErrSnapshotStopped)
}

func TestStateMachineRecoverTruncated(t *testing.T) {
	fsm := newTestStateMachine()
	_, err := fsm.Update([]sm.Entry{incrEntry(1, "page1", 1)})
	require.NoError(t, err)

	ctx, err := fsm.PrepareSnapshot()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fsm.SaveSnapshot(ctx, &buf, nil, make(chan struct{})))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])
	assert.Error(t, newTestStateMachine().RecoverFromSnapshot(truncated, nil, make(chan struct{})))
}
