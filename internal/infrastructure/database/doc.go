// Package database provides SQLite connectivity for smarthouse-core.
//
// It manages:
//   - Database connection with WAL mode for concurrent reads during writes
//   - Schema migrations embedded into the binary
//   - A single-writer connection pool (SQLite supports one writer)
//
// All repositories in this module share one *DB handle. Writes are
// serialized through the pool (MaxOpenConns = 1); reads see committed
// state only, which satisfies the isolation the query layer needs.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
