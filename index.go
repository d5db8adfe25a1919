package lazydb

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"lazydb/internal/record"
)

// indexEntry locates the current content for one key: the offset of the
// content-type byte, the stored content length (type byte included) and the
// content type itself.
type indexEntry struct {
	offset int64
	length int64
	ctype  byte
}

// headerIndex is the in-memory mapping rebuilt on every open. It is the
// single source of truth for which physical record is a key's current value.
type headerIndex map[record.Key]indexEntry

// buildIndex scans r from its current position (just past the Settings
// Block) to end-of-file, folding every record header into the index. Later
// records for a key replace earlier ones. Payload bytes are skipped with
// Seek, never read, so indexing costs O(record count) regardless of how much
// data the file holds.
func buildIndex(r io.ReadSeeker, size int64, s Settings) (headerIndex, error) {
	idx := make(headerIndex)

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	for pos < size {
		recordStart := pos

		marker, err := readByte(r)
		if err != nil {
			return nil, truncatedRecord(recordStart, err)
		}
		if marker != record.Sentinel {
			return nil, errors.Wrapf(ErrCorruption,
				"record at offset %d does not begin with the start marker", recordStart)
		}

		keyType, err := readByte(r)
		if err != nil {
			return nil, truncatedRecord(recordStart, err)
		}

		var key record.Key
		switch keyType {
		case record.KeyTypeString:
			raw, err := readToSentinel(r)
			if err != nil {
				return nil, truncatedRecord(recordStart, err)
			}
			key = record.Key{Type: record.KeyTypeString, Str: string(raw)}
			pos = recordStart + 3 + int64(len(raw))
		case record.KeyTypeInt:
			var kb [record.IntWidth]byte
			if _, err := io.ReadFull(r, kb[:]); err != nil {
				return nil, truncatedRecord(recordStart, err)
			}
			term, err := readByte(r)
			if err != nil {
				return nil, truncatedRecord(recordStart, err)
			}
			if term != record.Sentinel {
				return nil, errors.Wrapf(ErrCorruption,
					"record at offset %d has an unterminated integer key", recordStart)
			}
			key = record.Key{Type: record.KeyTypeInt, Int: int64(binary.LittleEndian.Uint64(kb[:]))}
			pos = recordStart + 3 + record.IntWidth
		default:
			return nil, errors.Wrapf(ErrCorruption,
				"record at offset %d has unknown key type byte %#x", recordStart, keyType)
		}

		lenBytes := make([]byte, s.ContentIntSize)
		if _, err := io.ReadFull(r, lenBytes); err != nil {
			return nil, truncatedRecord(recordStart, err)
		}
		length := int64(record.UintLE(lenBytes))
		pos += int64(s.ContentIntSize)

		if length < 1 {
			return nil, errors.Wrapf(ErrFormat,
				"record at offset %d has content length %d", recordStart, length)
		}

		contentOffset := pos
		ctype, err := readByte(r)
		if err != nil {
			return nil, truncatedRecord(recordStart, err)
		}
		if !record.ValidContentType(ctype) {
			return nil, errors.Wrapf(ErrCorruption,
				"record at offset %d has unknown content type byte %#x", recordStart, ctype)
		}

		end := contentOffset + length
		if end > size {
			return nil, errors.Wrapf(ErrCorruption,
				"record at offset %d runs past end of file", recordStart)
		}
		if _, err := r.Seek(end, io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seeking past content at offset %d", contentOffset)
		}
		pos = end

		idx[key] = indexEntry{offset: contentOffset, length: length, ctype: ctype}
	}

	return idx, nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

func truncatedRecord(offset int64, err error) error {
	return errors.Wrapf(ErrCorruption, "file ends mid-record at offset %d: %v", offset, err)
}
