package badger

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/loomdb/loom/datastore"
)

// txn wraps a badger transaction. It is single-owner, like every
// datastore.Txn, so its state needs no locking.
type txn struct {
	t        *badger.Txn
	readOnly bool
	done     bool
	cursors  []*cursor
}

var _ datastore.Txn = (*txn)(nil)

func (t *txn) Get(key []byte) ([]byte, error) {
	if t.done {
		return nil, datastore.ErrTxnClosed
	}

	item, err := t.t.Get(key)
	if err != nil {
		return nil, mapErr(err)
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, datastore.NewErrBackendIO(err)
	}
	return value, nil
}

func (t *txn) Has(key []byte) (bool, error) {
	if t.done {
		return false, datastore.ErrTxnClosed
	}

	_, err := t.t.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err)
	}
	return true, nil
}

func (t *txn) Put(key, value []byte) error {
	if t.done {
		return datastore.ErrTxnClosed
	}
	if t.readOnly {
		return datastore.ErrReadOnlyTxn
	}

	// Register a read on the key so the engine's commit validation also
	// rejects blind write-write overlap, matching the memory backend.
	if _, err := t.t.Get(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return mapErr(err)
	}

	return mapErr(t.t.Set(key, value))
}

func (t *txn) Delete(key []byte) error {
	if t.done {
		return datastore.ErrTxnClosed
	}
	if t.readOnly {
		return datastore.ErrReadOnlyTxn
	}

	if _, err := t.t.Get(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return mapErr(err)
	}

	return mapErr(t.t.Delete(key))
}

func (t *txn) GetIterator(q datastore.Query) (datastore.Cursor, error) {
	if t.done {
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
	if t.done {
		return datastore.ErrTxnClosed
	}
	t.closeCursors()
	t.done = true

	if err := t.t.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return datastore.ErrTxnConflict
		}
		return datastore.NewErrBackendIO(err)
	}
	return nil
}

func (t *txn) Discard() {
	if t.done {
		return
	}
	t.closeCursors()
	t.done = true
	t.t.Discard()
}

// closeCursors releases any cursor still open: the engine requires all
// iterators closed before a transaction ends.
func (t *txn) closeCursors() {
	for _, c := range t.cursors {
		c.Close()
	}
	t.cursors = nil
}
