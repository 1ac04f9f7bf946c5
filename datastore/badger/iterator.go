package badger

import (
	"bytes"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/loomdb/loom/datastore"
)

// cursor lazily walks a badger iterator inside the query's bounds. The
// engine fixes the iterator's view (snapshot plus pending writes) at
// creation time, which is exactly the cursor contract.
type cursor struct {
	txn      *txn
	it       *badger.Iterator
	q        datastore.Query
	consumed int
	closed   bool
}

var _ datastore.Cursor = (*cursor)(nil)

func newCursor(t *txn, q datastore.Query) *cursor {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = q.Reverse

	c := &cursor{txn: t, it: t.t.NewIterator(opts), q: q}
	c.rewind()
	return c
}

func (c *cursor) rewind() {
	if !c.q.Reverse {
		if c.q.Start != nil {
			c.it.Seek(c.q.Start)
		} else {
			c.it.Rewind()
		}
		return
	}

	if c.q.End == nil {
		c.it.Rewind()
		return
	}
	// A reverse seek lands on the first key <= target; End is exclusive,
	// so step past an exact hit.
	c.it.Seek(c.q.End)
	for c.it.Valid() && bytes.Compare(c.it.Item().Key(), c.q.End) >= 0 {
		c.it.Next()
	}
}

func (c *cursor) Valid() bool {
	if c.closed || c.txn.done {
		return false
	}
	if c.q.Limit > 0 && c.consumed >= c.q.Limit {
		return false
	}
	return c.it.Valid() && c.q.Contains(c.it.Item().Key())
}

// Item returns the entry at the current position, or ErrCursorExhausted
// when the cursor has moved past its last entry.
func (c *cursor) Item() (datastore.Entry, error) {
	if c.txn.done || c.closed {
		return datastore.Entry{}, datastore.ErrTxnClosed
	}
	if !c.Valid() {
		return datastore.Entry{}, datastore.ErrCursorExhausted
	}

	item := c.it.Item()
	value, err := item.ValueCopy(nil)
	if err != nil {
		return datastore.Entry{}, datastore.NewErrBackendIO(err)
	}
	return datastore.Entry{Key: item.KeyCopy(nil), Value: value}, nil
}

func (c *cursor) Next() error {
	if c.txn.done || c.closed {
		return datastore.ErrTxnClosed
	}
	c.consumed++
	c.it.Next()
	return nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.it.Close()
	return nil
}
