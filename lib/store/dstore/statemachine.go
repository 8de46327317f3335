package dstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"time"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// CounterStateMachine is a state machine implementation for Dragonboat RAFT
// holding a set of counters.
type CounterStateMachine struct {
	replicaID uint64
	shardID   uint64
	counters  *xsync.MapOf[string, int64]
}

// snapshotEntry is a single counter in a prepared snapshot
type snapshotEntry struct {
	key   string
	total int64
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
func CreateStateMachineFactory() func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &CounterStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			counters:  xsync.NewMapOf[string, int64](),
		}
	}
}

// Lookup handles read-only queries.
func (fsm *CounterStateMachine) Lookup(itf interface{}) (interface{}, error) {

	// try to parse Query into Query struct
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTGet:
		total, ok := fsm.counters.Load(q.Key)
		return internal.QueryResult{
			Ok:    ok,
			Total: total,
		}, nil
	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// Update handles write commands.
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *CounterStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()

	for idx, e := range entries {
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte("empty command ignored")}
			continue
		}

		// Deserialize the command
		cmd := internal.Command{}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
			continue
		}

		switch cmd.Type {
		case internal.CommandTIncr:
			total, _ := fsm.counters.Compute(cmd.Key, func(old int64, _ bool) (int64, bool) {
				return old + cmd.Delta, false
			})
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  internal.EncodeTotal(total),
			}
		default:
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
		}
	}

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("Statemachine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot copies the counters. Dragonboat guarantees that Update is not
// running concurrently, so the copy is a consistent point-in-time view.
func (fsm *CounterStateMachine) PrepareSnapshot() (interface{}, error) {
	entries := make([]snapshotEntry, 0, fsm.counters.Size())
	fsm.counters.Range(func(key string, total int64) bool {
		entries = append(entries, snapshotEntry{key: key, total: total})
		return true
	})
	return entries, nil
}

// SaveSnapshot writes the prepared snapshot with the format:
// 8 bytes entry count, then per entry 4 bytes key length, N bytes key, 8 bytes total
func (fsm *CounterStateMachine) SaveSnapshot(ctx interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, done <-chan struct{}) error {
	entries, ok := ctx.([]snapshotEntry)
	if !ok {
		return fmt.Errorf("invalid snapshot context type: %T", ctx)
	}

	w := bufio.NewWriter(writer)
	buf := make([]byte, 8)

	binary.BigEndian.PutUint64(buf, uint64(len(entries)))
	if _, err := w.Write(buf); err != nil {
		return err
	}

	for i, e := range entries {
		// check for cancellation every now and then
		if i%1024 == 0 {
			select {
			case <-done:
				return sm.ErrSnapshotStopped
			default:
			}
		}

		binary.BigEndian.PutUint32(buf[:4], uint32(len(e.key)))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
		if _, err := w.WriteString(e.key); err != nil {
			return err
		}
		binary.BigEndian.PutUint64(buf, uint64(e.total))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	return w.Flush()
}

// RecoverFromSnapshot replaces all counters with the content of the snapshot.
func (fsm *CounterStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, done <-chan struct{}) error {
	reader := bufio.NewReader(r)
	buf := make([]byte, 8)

	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	count := binary.BigEndian.Uint64(buf)

	counters := xsync.NewMapOf[string, int64]()
	for i := uint64(0); i < count; i++ {
		if i%1024 == 0 {
			select {
			case <-done:
				return sm.ErrSnapshotStopped
			default:
			}
		}

		if _, err := io.ReadFull(reader, buf[:4]); err != nil {
			return fmt.Errorf("failed to read key length of entry %d: %w", i, err)
		}
		key := make([]byte, binary.BigEndian.Uint32(buf[:4]))
		if _, err := io.ReadFull(reader, key); err != nil {
			return fmt.Errorf("failed to read key of entry %d: %w", i, err)
		}
		if _, err := io.ReadFull(reader, buf); err != nil {
			return fmt.Errorf("failed to read total of entry %d: %w", i, err)
		}
		counters.Store(string(key), int64(binary.BigEndian.Uint64(buf)))
	}

	fsm.counters = counters
	return nil
}

// Close performs any necessary cleanup.
func (fsm *CounterStateMachine) Close() error {
	return nil
}
