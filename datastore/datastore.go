package datastore

// Reader is the read capability exposed by stores and transactions.
type Reader interface {
	// Get returns the value currently associated with key, as observed
	// by the caller's snapshot. It returns ErrNotFound if the key is
	// absent.
	Get(key []byte) ([]byte, error)

	// Has reports whether key exists without materializing its value.
	Has(key []byte) (bool, error)
}

// Writer is the write capability exposed by read-write transactions.
type Writer interface {
	// Put inserts or overwrites the value associated with key.
	Put(key, value []byte) error

	// Delete removes key. Deleting a key that does not exist is a no-op.
	Delete(key []byte) error
}

// Iterable is implemented by anything that can be range-scanned.
type Iterable interface {
	// GetIterator returns a cursor over the entries matching q. The
	// cursor's view is fixed at creation time and includes any writes
	// buffered by the owning transaction. It returns ErrInvalidQuery
	// if q is malformed.
	GetIterator(q Query) (Cursor, error)
}

// Store groups the full capability set a backend must provide.
type Store interface {
	Reader
	Writer
	Iterable
}

// Txn is a transaction scoped to one Datastore. A transaction is either
// read-only or read-write, fixed at creation. Writes are buffered and
// become visible to other transactions only after a successful Commit.
//
// A transaction is single-owner: it must not be shared across goroutines.
type Txn interface {
	Store

	// Commit makes the transaction's writes durable and visible. It
	// returns ErrTxnConflict if another transaction committed an
	// overlapping write since this transaction's snapshot was taken;
	// in that case none of the writes are applied. Commit is terminal
	// either way.
	Commit() error

	// Discard abandons the transaction and releases any resources it
	// holds, including open cursors. It is safe to call Discard
	// multiple times, and after Commit.
	Discard()
}

// Datastore is the long-lived handle to one backend instance. It is the
// sole factory for transactions and is safe for concurrent use.
type Datastore interface {
	// NewTxn begins a transaction against the current snapshot.
	// Read-only transactions reject Put and Delete with ErrReadOnlyTxn.
	NewTxn(readOnly bool) (Txn, error)

	// MaxTxnRetries returns the attempt bound consumed by RunWithRetry.
	MaxTxnRetries() int

	// Close releases the backend. No transaction may be created after
	// Close returns.
	Close() error
}

// Cursor is a positioned handle over the result of a Query, bound to the
// transaction that created it. A consumed cursor cannot be rewound; create
// a new one to scan again.
type Cursor interface {
	// Valid reports whether the cursor is positioned on an entry.
	Valid() bool

	// Item returns the entry at the current position. It returns
	// ErrCursorExhausted when the cursor is past its last entry.
	Item() (Entry, error)

	// Next advances the cursor by one entry.
	Next() error

	// Close releases backend iteration resources. It is idempotent and
	// must be called as soon as the caller is done iterating.
	Close() error
}

// Entry is an immutable key-value pair produced by iteration.
type Entry struct {
	Key, Value []byte
}
