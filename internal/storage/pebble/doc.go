// Package pebblestore wraps Pebble with a fsync policy fixed at open time
// and the small read/write surface the event log needs.
//
// Appends go through CommitBatch so the WAL sync mode applies uniformly,
// and reads use Get/NewIter against the same handle.
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data/store",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
package pebblestore
