package memory

import (
	"sort"

	"github.com/loomdb/loom/datastore"
)

// cursor iterates a view materialized at creation time: the committed
// entries visible to the transaction's snapshot, merged with the writes the
// transaction had buffered when the cursor was created.
type cursor struct {
	txn     *txn
	entries []datastore.Entry
	pos     int
	closed  bool
}

var _ datastore.Cursor = (*cursor)(nil)

func newCursor(t *txn, q datastore.Query) *cursor {
	merged := make(map[string][]byte)
	for _, e := range t.ds.scan(q, t.snapshot) {
		merged[string(e.Key)] = e.Value
	}
	for key, w := range t.writes {
		if !q.Contains([]byte(key)) {
			continue
		}
		if w.deleted {
			delete(merged, key)
			continue
		}
		merged[key] = w.value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if q.Reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	if q.Limit > 0 && len(keys) > q.Limit {
		keys = keys[:q.Limit]
	}

	entries := make([]datastore.Entry, len(keys))
	for i, key := range keys {
		entries[i] = datastore.Entry{
			Key:   []byte(key),
			Value: append([]byte(nil), merged[key]...),
		}
	}
	return &cursor{txn: t, entries: entries}
}

func (c *cursor) Valid() bool {
	return !c.closed && c.txn.state == stateActive && c.pos < len(c.entries)
}

// Item returns the entry at the current position, or ErrCursorExhausted
// when the cursor has moved past its last entry.
func (c *cursor) Item() (datastore.Entry, error) {
	if c.txn.state != stateActive || c.closed {
		return datastore.Entry{}, datastore.ErrTxnClosed
	}
	if c.pos >= len(c.entries) {
		return datastore.Entry{}, datastore.ErrCursorExhausted
	}
	return c.entries[c.pos], nil
}

func (c *cursor) Next() error {
	if c.txn.state != stateActive || c.closed {
		return datastore.ErrTxnClosed
	}
	c.pos++
	return nil
}

func (c *cursor) Close() error {
	c.closed = true
	return nil
}
