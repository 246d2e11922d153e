package main

import (
	"fmt"

	"raildispatch.dev/core/storage"
)

// openStore opens the backend named by the --store/--dsn flags. It
// returns a concrete *storage.MemoryStorage or *storage.SQLStore, both
// of which satisfy storage.ReadStore, storage.EventWriter and
// storage.SeedWriter.
func openStore() (interface {
	storage.ReadStore
	storage.EventWriter
	storage.SeedWriter
}, error) {
	switch storeDriver {
	case "", "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		cfg := storage.SQLiteConfig{}
		if storeDSN != "" {
			cfg.OnDisk = true
			cfg.Directory = storeDSN
		}
		return storage.NewSQLiteStore(cfg)
	case "postgres":
		if storeDSN == "" {
			return nil, fmt.Errorf("--dsn is required for --store postgres")
		}
		return storage.NewPostgresStore(storeDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", storeDriver)
	}
}
