package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loomdb/loom/datastore"
)

func newTestStore(t *testing.T) *Datastore {
	t.Helper()
	ds, err := Open(Options{
		Path:          t.TempDir(),
		MaxTxnRetries: 3,
		GCInterval:    time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestPutGetRoundTrip(t *testing.T) {
	ds := newTestStore(t)

	txn, err := ds.NewTxn(false)
	require.NoError(t, err)
	require.NoError(t, txn.Put([]byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())

	txn, err = ds.NewTxn(true)
	require.NoError(t, err)
	defer txn.Discard()

	value, err := txn.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)

	ok, err := txn.Has([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = txn.Get([]byte("missing"))
	require.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestBlindWriteConflictDetected(t *testing.T) {
	ds := newTestStore(t)

	first, err := ds.NewTxn(false)
	require.NoError(t, err)
	second, err := ds.NewTxn(false)
	require.NoError(t, err)

	// neither transaction reads the key explicitly
	require.NoError(t, first.Put([]byte("k"), []byte("first")))
	require.NoError(t, second.Put([]byte("k"), []byte("second")))

	require.NoError(t, first.Commit())
	require.ErrorIs(t, second.Commit(), datastore.ErrTxnConflict)
}

func TestIteratorBounds(t *testing.T) {
	ds := newTestStore(t)

	txn, err := ds.NewTxn(false)
	require.NoError(t, err)
	for _, key := range []string{"a", "b", "c", "d"} {
		require.NoError(t, txn.Put([]byte(key), []byte(key)))
	}
	require.NoError(t, txn.Commit())

	txn, err = ds.NewTxn(true)
	require.NoError(t, err)
	defer txn.Discard()

	collect := func(q datastore.Query) []string {
		cur, err := txn.GetIterator(q)
		require.NoError(t, err)
		defer cur.Close()

		var keys []string
		for cur.Valid() {
			entry, err := cur.Item()
			require.NoError(t, err)
			keys = append(keys, string(entry.Key))
			require.NoError(t, cur.Next())
		}
		return keys
	}

	require.Equal(t, []string{"a", "b"}, collect(datastore.Query{Start: []byte("a"), End: []byte("c")}))
	require.Empty(t, collect(datastore.Query{Start: []byte("b"), End: []byte("b")}))
	require.Equal(t, []string{"d", "c", "b", "a"}, collect(datastore.Query{Reverse: true}))
	require.Equal(t, []string{"b", "a"}, collect(datastore.Query{End: []byte("c"), Reverse: true}))
	require.Equal(t, []string{"a", "b"}, collect(datastore.Query{Limit: 2}))
}

func TestCursorClosedWithTxn(t *testing.T) {
	ds := newTestStore(t)

	txn, err := ds.NewTxn(false)
	require.NoError(t, err)
	require.NoError(t, txn.Put([]byte("k"), []byte("v")))

	cur, err := txn.GetIterator(datastore.Query{})
	require.NoError(t, err)

	// discarding the transaction closes the engine iterator for us
	txn.Discard()

	require.False(t, cur.Valid())
	require.ErrorIs(t, cur.Next(), datastore.ErrTxnClosed)
	_, err = cur.Item()
	require.ErrorIs(t, err, datastore.ErrTxnClosed)
	require.NoError(t, cur.Close())
}

func TestTxnClosedAfterCommit(t *testing.T) {
	ds := newTestStore(t)

	txn, err := ds.NewTxn(false)
	require.NoError(t, err)
	require.NoError(t, txn.Put([]byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())

	require.ErrorIs(t, txn.Put([]byte("k"), []byte("v")), datastore.ErrTxnClosed)
	_, err = txn.Get([]byte("k"))
	require.ErrorIs(t, err, datastore.ErrTxnClosed)
	require.ErrorIs(t, txn.Commit(), datastore.ErrTxnClosed)
	txn.Discard() // no-op
}

func TestCloseIsTerminalAndIdempotent(t *testing.T) {
	ds, err := Open(Options{Path: t.TempDir(), GCInterval: time.Hour})
	require.NoError(t, err)

	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())

	_, err = ds.NewTxn(false)
	require.ErrorIs(t, err, datastore.ErrClosed)
}

func TestOpenDefaultsApplied(t *testing.T) {
	ds, err := Open(Options{Path: t.TempDir()})
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, GCIntervalDefault, ds.opts.GCInterval)
	require.Equal(t, GCDiscardRatioDefault, ds.opts.GCDiscardRatio)
	require.NotNil(t, ds.opts.Logger)
}
