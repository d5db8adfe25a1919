// Package lazydb implements a single-file key-value store for datasets whose
// values are too large to hold in memory but whose key set is not. Opening a
// file scans record headers only, building an in-memory index of where each
// key's content lives; content bytes are read lazily, one key at a time.
//
// The file is append-only. Writing an existing key appends a new record and
// shadows the old one in the index; nothing is ever rewritten in place.
//
// Example:
//
//	db, err := lazydb.Open("app.lazydb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.Write("answer", 42)
//	val, err := db.Read("answer")
package lazydb
