package datastore

import "errors"

var ErrNotFound = errors.New("key not found")

var ErrReadOnlyTxn = errors.New("transaction is read-only")

var ErrTxnClosed = errors.New("transaction has been committed or discarded")

var ErrTxnConflict = errors.New("transaction conflict, retry the transaction")

var ErrInvalidQuery = errors.New("invalid query")

var ErrCursorExhausted = errors.New("cursor has no current entry")

var ErrClosed = errors.New("datastore closed")

// ErrBackendIO marks failures originating in the physical storage engine.
// Backend errors are joined with it, so both errors.Is(err, ErrBackendIO)
// and inspection of the engine error keep working.
var ErrBackendIO = errors.New("backend io failure")

// NewErrBackendIO attaches ErrBackendIO to an engine error. It returns nil
// if err is nil.
func NewErrBackendIO(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrBackendIO, err)
}
