package lazydb

import (
	"github.com/cockroachdb/errors"

	"lazydb/internal/record"
)

// Sentinel errors returned by the store. Match with errors.Is; returned
// values usually carry extra offset or operation context on top.
var (
	// ErrFormat indicates a missing or unparsable Settings Block, or a
	// record whose structural fields are internally inconsistent. Fatal to
	// the open operation.
	ErrFormat = record.ErrFormat

	// ErrCorruption indicates a record that does not begin with the start
	// marker, or a file that ends mid-record. The file is unusable until
	// repaired externally.
	ErrCorruption = errors.New("lazydb: corrupted database file")

	// ErrKeyNotFound indicates a read of a key with no current entry.
	ErrKeyNotFound = errors.New("lazydb: key not found")

	// ErrUnsupportedType indicates a write with a key or value outside the
	// supported set. No bytes are written.
	ErrUnsupportedType = record.ErrUnsupportedType

	// ErrClosed indicates an operation on a closed handle.
	ErrClosed = errors.New("lazydb: database is closed")
)
