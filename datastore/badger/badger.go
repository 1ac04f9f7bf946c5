// Package badger provides the on-disk datastore backend, backed by the
// badger v4 log-structured engine.
package badger

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/loomdb/loom/datastore"
)

const (
	GCIntervalDefault     = 5 * time.Minute
	GCDiscardRatioDefault = 0.5
)

// Options configures an on-disk datastore.
type Options struct {
	// Path is the root directory for the engine's files.
	Path string

	// ValueLogFileSize caps the size of a single value-log segment, in
	// bytes. Zero keeps the engine default.
	ValueLogFileSize uint64

	// MaxTxnRetries bounds datastore.RunWithRetry.
	MaxTxnRetries int

	// GCInterval and GCDiscardRatio tune the background value-log GC.
	// Zero values fall back to the package defaults.
	GCInterval     time.Duration
	GCDiscardRatio float64

	// Logger receives engine log output. Nil silences it.
	Logger *zap.Logger
}

// Datastore implements datastore.Datastore on a badger database.
type Datastore struct {
	db     *badger.DB
	opts   Options
	logger *zap.SugaredLogger
	closed atomic.Bool

	chWg   sync.WaitGroup
	chQuit chan struct{}
}

var _ datastore.Datastore = (*Datastore)(nil)

// Open opens (or creates) the database under opts.Path.
func Open(opts Options) (*Datastore, error) {
	if opts.GCInterval <= 0 {
		opts.GCInterval = GCIntervalDefault
	}
	if opts.GCDiscardRatio <= 0 {
		opts.GCDiscardRatio = GCDiscardRatioDefault
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Sugar()

	bopts := badger.DefaultOptions(opts.Path).WithLogger(engineLogger{logger})
	if opts.ValueLogFileSize > 0 {
		bopts = bopts.WithValueLogFileSize(int64(opts.ValueLogFileSize))
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, datastore.NewErrBackendIO(err)
	}

	ds := &Datastore{
		db:     db,
		opts:   opts,
		logger: logger,
		chQuit: make(chan struct{}, 1),
	}
	ds.startGC()
	return ds, nil
}

func (d *Datastore) NewTxn(readOnly bool) (datastore.Txn, error) {
	if d.closed.Load() {
		return nil, datastore.ErrClosed
	}
	return &txn{t: d.db.NewTransaction(!readOnly), readOnly: readOnly}, nil
}

func (d *Datastore) MaxTxnRetries() int {
	return d.opts.MaxTxnRetries
}

func (d *Datastore) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.stopGC()
	return datastore.NewErrBackendIO(d.db.Close())
}

func (d *Datastore) startGC() {
	d.chWg.Add(1)

	go func() {
		defer d.chWg.Done()

		ticker := time.NewTicker(d.opts.GCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-d.chQuit:
				return

			case <-ticker.C:
				err := d.db.RunValueLogGC(d.opts.GCDiscardRatio)
				if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Errorf("value log gc: %v", err)
				}
			}
		}
	}()
}

func (d *Datastore) stopGC() {
	d.chQuit <- struct{}{}
	d.chWg.Wait()
	close(d.chQuit)
}

// engineLogger adapts a zap logger to the badger.Logger interface.
type engineLogger struct {
	*zap.SugaredLogger
}

func (l engineLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// mapErr translates engine errors into the datastore taxonomy.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return datastore.ErrNotFound
	case errors.Is(err, badger.ErrConflict):
		return datastore.ErrTxnConflict
	case errors.Is(err, badger.ErrReadOnlyTxn):
		return datastore.ErrReadOnlyTxn
	case errors.Is(err, badger.ErrDiscardedTxn):
		return datastore.ErrTxnClosed
	default:
		return datastore.NewErrBackendIO(err)
	}
}
