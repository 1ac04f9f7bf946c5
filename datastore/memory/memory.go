// Package memory provides an in-memory datastore backend with snapshot
// isolation and optimistic conflict detection. Committed values are kept as
// small per-key version chains inside an ordered map, so concurrent
// transactions read the version that was current when their snapshot was
// taken.
package memory

import (
	"bytes"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/loomdb/loom/datastore"
)

// Options configures an in-memory datastore.
type Options struct {
	// Size is an advisory capacity hint in bytes, kept for parity with
	// the on-disk backend's sizing knobs. The store grows past it if
	// callers keep writing.
	Size uint64

	// MaxTxnRetries bounds datastore.RunWithRetry.
	MaxTxnRetries int
}

// item is one committed version of a key. Deletes are kept as tombstones so
// older snapshots still observe the previous value.
type item struct {
	version uint64
	value   []byte
	deleted bool
}

// Datastore implements datastore.Datastore on process memory.
type Datastore struct {
	opts Options

	mu sync.RWMutex
	// values maps []byte keys to []item version chains, ascending by
	// version. The newest chain entry is never pruned.
	values  *treemap.Map
	version uint64
	// inFlight counts open transactions per snapshot version, so commits
	// know how far back version chains must be preserved.
	inFlight map[uint64]int
	closed   bool
}

var _ datastore.Datastore = (*Datastore)(nil)

// NewDatastore creates an empty in-memory datastore.
func NewDatastore(opts Options) *Datastore {
	return &Datastore{
		opts: opts,
		values: treemap.NewWith(func(a, b interface{}) int {
			return bytes.Compare(a.([]byte), b.([]byte))
		}),
		inFlight: make(map[uint64]int),
	}
}

func (d *Datastore) NewTxn(readOnly bool) (datastore.Txn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, datastore.ErrClosed
	}

	snapshot := d.version
	d.inFlight[snapshot]++

	return &txn{
		ds:       d,
		snapshot: snapshot,
		readOnly: readOnly,
		writes:   make(map[string]pendingWrite),
	}, nil
}

func (d *Datastore) MaxTxnRetries() int {
	return d.opts.MaxTxnRetries
}

func (d *Datastore) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// get returns the value for key visible at snapshot.
func (d *Datastore) get(key []byte, snapshot uint64) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chain, ok := d.values.Get(key)
	if !ok {
		return nil, false
	}
	it, ok := visible(chain.([]item), snapshot)
	if !ok || it.deleted {
		return nil, false
	}
	return it.value, true
}

// scan collects the entries visible at snapshot inside q's range, in key
// order, before any limit or direction is applied.
func (d *Datastore) scan(q datastore.Query, snapshot uint64) []datastore.Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var entries []datastore.Entry
	iter := d.values.Iterator()
	for iter.Next() {
		key := iter.Key().([]byte)
		if !q.Contains(key) {
			continue
		}
		it, ok := visible(iter.Value().([]item), snapshot)
		if !ok || it.deleted {
			continue
		}
		entries = append(entries, datastore.Entry{Key: key, Value: it.value})
	}
	return entries
}

// commit validates t's write set against commits newer than its snapshot and
// applies it atomically. The caller must not hold d.mu.
func (d *Datastore) commit(t *txn) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range t.writes {
		chain, ok := d.values.Get([]byte(key))
		if !ok {
			continue
		}
		items := chain.([]item)
		if items[len(items)-1].version > t.snapshot {
			d.releaseSnapshot(t.snapshot)
			return datastore.ErrTxnConflict
		}
	}

	d.version++
	d.releaseSnapshot(t.snapshot)
	oldest := d.oldestSnapshot()

	for key, w := range t.writes {
		k := []byte(key)
		var items []item
		if chain, ok := d.values.Get(k); ok {
			items = chain.([]item)
		}
		items = append(items, item{version: d.version, value: w.value, deleted: w.deleted})
		items = prune(items, oldest)
		if len(items) == 0 {
			d.values.Remove(k)
		} else {
			d.values.Put(k, items)
		}
	}
	return nil
}

func (d *Datastore) release(snapshot uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseSnapshot(snapshot)
}

func (d *Datastore) releaseSnapshot(snapshot uint64) {
	if d.inFlight[snapshot] <= 1 {
		delete(d.inFlight, snapshot)
		return
	}
	d.inFlight[snapshot]--
}

// oldestSnapshot returns the oldest snapshot still held by an open
// transaction, or the current version if none is open.
func (d *Datastore) oldestSnapshot() uint64 {
	oldest := d.version
	for snapshot := range d.inFlight {
		if snapshot < oldest {
			oldest = snapshot
		}
	}
	return oldest
}

// visible returns the newest item with version <= snapshot.
func visible(items []item, snapshot uint64) (item, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].version <= snapshot {
			return items[i], true
		}
	}
	return item{}, false
}

// prune drops chain entries no open snapshot can observe anymore. A chain
// reduced to a tombstone older than every open snapshot vanishes entirely.
func prune(items []item, oldestSnapshot uint64) []item {
	keep := 0
	for i := range items {
		if items[i].version <= oldestSnapshot {
			keep = i
		}
	}
	items = items[keep:]

	if len(items) == 1 && items[0].deleted && items[0].version <= oldestSnapshot {
		return nil
	}
	return items
}
