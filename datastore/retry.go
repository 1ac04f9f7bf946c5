package datastore

import "errors"

// RunWithRetry executes fn inside a transaction and commits it, re-running
// fn against a fresh transaction whenever the commit hits ErrTxnConflict.
// At most max(1, ds.MaxTxnRetries()) attempts are made before the conflict
// is surfaced to the caller.
//
// fn must not keep state across attempts: each retry starts from scratch
// against a new snapshot, so any side effect outside the transaction must
// be idempotent. Errors returned by fn, and commit errors other than
// ErrTxnConflict, abort immediately without consuming further attempts.
func RunWithRetry(ds Datastore, readOnly bool, fn func(txn Txn) error) error {
	attempts := ds.MaxTxnRetries()
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var txn Txn
		txn, err = ds.NewTxn(readOnly)
		if err != nil {
			return err
		}

		if err = fn(txn); err != nil {
			txn.Discard()
			return err
		}

		err = txn.Commit()
		if err == nil {
			return nil
		}
		txn.Discard()

		if !errors.Is(err, ErrTxnConflict) {
			return err
		}
	}
	return err
}
