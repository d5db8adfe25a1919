package lazydb

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"lazydb/internal/lock"
	"lazydb/internal/record"
)

// DB is an open database handle. It owns the underlying file exclusively
// from Open until Close; an advisory lock makes a second open of the same
// file fail instead of racing. A DB is not safe for concurrent use; callers
// sharing one across goroutines must serialize access themselves.
type DB struct {
	file     *os.File
	settings Settings
	index    headerIndex
	tail     int64
	closed   bool
}

// Open opens the database file at path, creating and bootstrapping it when
// it does not exist or is empty. For a new file the Settings Block is built
// from opts; for an existing file the stored Settings Block wins and opts
// are ignored.
func Open(path string, opts ...Option) (*DB, error) {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if err := lock.LockFile(f); err != nil {
		f.Close()
		return nil, err
	}

	db := &DB{file: f}
	if err := db.load(settings); err != nil {
		lock.UnlockFile(f)
		f.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) load(settings Settings) error {
	info, err := db.file.Stat()
	if err != nil {
		return errors.Wrap(err, "stat database file")
	}
	size := info.Size()

	// A pre-existing zero-length file is bootstrapped like a new one.
	if size == 0 {
		block, err := settings.encode()
		if err != nil {
			return err
		}
		n, err := db.file.WriteAt(block, 0)
		if err != nil {
			return errors.Wrap(err, "writing settings block")
		}
		db.settings = settings
		db.index = make(headerIndex)
		db.tail = int64(n)
		return nil
	}

	if _, err := db.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	stored, err := readSettings(db.file)
	if err != nil {
		return err
	}

	idx, err := buildIndex(db.file, size, stored)
	if err != nil {
		return err
	}

	db.settings = stored
	db.index = idx
	db.tail = size
	return nil
}

// Write appends a new entry for key and points the index at it. An earlier
// entry for the same key stays on disk but is shadowed in the index; stale
// bytes are dead space until an external compaction pass reclaims them.
//
// The append happens before the index update, so a crash between the two
// leaves a dangling tail that the next open reports as corruption.
func (db *DB) Write(key, value any) error {
	if db.closed {
		return ErrClosed
	}

	k, err := record.NewKey(key)
	if err != nil {
		return err
	}
	data, contentOffset, err := record.Encode(k, value, db.settings.ContentIntSize, db.settings.IntListSize)
	if err != nil {
		return err
	}

	if _, err := db.file.WriteAt(data, db.tail); err != nil {
		return errors.Wrapf(err, "appending entry at offset %d", db.tail)
	}

	db.index[k] = indexEntry{
		offset: db.tail + int64(contentOffset),
		length: int64(len(data) - contentOffset),
		ctype:  data[contentOffset],
	}
	db.tail += int64(len(data))
	return nil
}

// Read returns the current value for key. It touches exactly the content
// bytes the index points at: one seek, one read of the recorded length.
func (db *DB) Read(key any) (any, error) {
	if db.closed {
		return nil, ErrClosed
	}

	k, err := record.NewKey(key)
	if err != nil {
		return nil, err
	}
	entry, ok := db.index[k]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "key %v", key)
	}

	content := make([]byte, entry.length)
	if _, err := db.file.ReadAt(content, entry.offset); err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes at offset %d", entry.length, entry.offset)
	}
	if content[0] != entry.ctype {
		return nil, errors.Wrapf(ErrCorruption,
			"content at offset %d has type byte %#x, index recorded %#x",
			entry.offset, content[0], entry.ctype)
	}

	return record.DecodeContent(content, db.settings.IntListSize)
}

// Has reports whether key currently resolves to an entry.
func (db *DB) Has(key any) bool {
	if db.closed {
		return false
	}
	k, err := record.NewKey(key)
	if err != nil {
		return false
	}
	_, ok := db.index[k]
	return ok
}

// Count returns the number of distinct keys in the index.
func (db *DB) Count() int {
	return len(db.index)
}

// Keys returns every current key, in no particular order.
func (db *DB) Keys() []any {
	keys := make([]any, 0, len(db.index))
	for k := range db.index {
		keys = append(keys, k.Value())
	}
	return keys
}

// Settings returns the file-wide parameters the handle was opened with.
func (db *DB) Settings() Settings {
	return db.settings
}

// Close flushes buffered writes and releases the file and its lock. Every
// operation after Close returns ErrClosed.
func (db *DB) Close() error {
	if db.closed {
		return ErrClosed
	}
	db.closed = true

	err := db.file.Sync()
	lock.UnlockFile(db.file)
	if cerr := db.file.Close(); err == nil {
		err = cerr
	}
	return err
}
