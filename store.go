// Package loom wires the configured storage backend into a datastore
// handle. Everything above this package talks to storage only through the
// datastore contracts.
package loom

import (
	"github.com/loomdb/loom/config"
	"github.com/loomdb/loom/datastore"
	badgerds "github.com/loomdb/loom/datastore/badger"
	memoryds "github.com/loomdb/loom/datastore/memory"
	"github.com/loomdb/loom/logging"
)

// OpenDatastore constructs the backend selected by cfg. Unknown store types
// fail here, before any transaction can exist.
func OpenDatastore(cfg *config.Config) (datastore.Datastore, error) {
	switch cfg.Datastore.Store {
	case config.DatastoreTypeMemory:
		return memoryds.NewDatastore(memoryds.Options{
			Size:          cfg.Datastore.Memory.Size,
			MaxTxnRetries: cfg.Datastore.MaxTxnRetries,
		}), nil

	case config.DatastoreTypeBadger:
		logger, err := logging.NewNamedLogger(cfg, "badger")
		if err != nil {
			return nil, err
		}
		return badgerds.Open(badgerds.Options{
			Path:             cfg.Datastore.Badger.Path,
			ValueLogFileSize: uint64(cfg.Datastore.Badger.ValueLogFileSize),
			MaxTxnRetries:    cfg.Datastore.MaxTxnRetries,
			Logger:           logger,
		})

	default:
		return nil, config.NewErrInvalidDatastoreType(cfg.Datastore.Store)
	}
}
