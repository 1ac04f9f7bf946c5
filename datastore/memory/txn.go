package memory

import (
	"github.com/loomdb/loom/datastore"
)

type txnState uint8

const (
	stateActive txnState = iota
	stateCommitted
	stateDiscarded
	stateConflicted
)

type pendingWrite struct {
	value   []byte
	deleted bool
}

// txn buffers writes until Commit and reads through a fixed snapshot.
// It is single-owner, like every datastore.Txn.
type txn struct {
	ds       *Datastore
	snapshot uint64
	readOnly bool
	state    txnState
	writes   map[string]pendingWrite
	cursors  []*cursor
}

var _ datastore.Txn = (*txn)(nil)

func (t *txn) Get(key []byte) ([]byte, error) {
	if t.state != stateActive {
		return nil, datastore.ErrTxnClosed
	}

	if w, ok := t.writes[string(key)]; ok {
		if w.deleted {
			return nil, datastore.ErrNotFound
		}
		return w.value, nil
	}

	value, ok := t.ds.get(key, t.snapshot)
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return value, nil
}

func (t *txn) Has(key []byte) (bool, error) {
	if t.state != stateActive {
		return false, datastore.ErrTxnClosed
	}

	if w, ok := t.writes[string(key)]; ok {
		return !w.deleted, nil
	}

	_, ok := t.ds.get(key, t.snapshot)
	return ok, nil
}

func (t *txn) Put(key, value []byte) error {
	if t.state != stateActive {
		return datastore.ErrTxnClosed
	}
	if t.readOnly {
		return datastore.ErrReadOnlyTxn
	}

	t.writes[string(key)] = pendingWrite{value: append([]byte(nil), value...)}
	return nil
}

func (t *txn) Delete(key []byte) error {
	if t.state != stateActive {
		return datastore.ErrTxnClosed
	}
	if t.readOnly {
		return datastore.ErrReadOnlyTxn
	}

	t.writes[string(key)] = pendingWrite{deleted: true}
	return nil
}

func (t *txn) GetIterator(q datastore.Query) (datastore.Cursor, error) {
	if t.state != stateActive {
		return nil, datastore.ErrTxnClosed
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c := newCursor(t, q)
	t.cursors = append(t.cursors, c)
	return c, nil
}

func (t *txn) Commit() error {
	if t.state != stateActive {
		return datastore.ErrTxnClosed
	}
	t.closeCursors()

	if t.readOnly || len(t.writes) == 0 {
		t.state = stateCommitted
		t.ds.release(t.snapshot)
		return nil
	}

	if err := t.ds.commit(t); err != nil {
		t.state = stateConflicted
		return err
	}
	t.state = stateCommitted
	return nil
}

func (t *txn) Discard() {
	if t.state != stateActive {
		return
	}
	t.closeCursors()
	t.state = stateDiscarded
	t.ds.release(t.snapshot)
}

func (t *txn) closeCursors() {
	for _, c := range t.cursors {
		c.closed = true
	}
	t.cursors = nil
}
