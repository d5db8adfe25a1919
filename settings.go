package lazydb

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"lazydb/internal/record"
)

// Defaults for a freshly bootstrapped database file.
const (
	DefaultContentIntSize = 4
	DefaultIntListSize    = 4
)

const (
	minFieldWidth = 1
	maxFieldWidth = 8
)

// Settings are the file-wide parameters stored in the Settings Block at the
// head of every database file: compact JSON text terminated by the sentinel
// byte. The block is written once when the file is bootstrapped and is
// immutable afterwards; on reopen the stored values override whatever
// options were passed to Open.
type Settings struct {
	// ContentIntSize is the width in bytes of the content-length field.
	ContentIntSize int `json:"content_int_size"`

	// IntListSize is the width in bytes of one integer-list element.
	IntListSize int `json:"int_list_size"`
}

func defaultSettings() Settings {
	return Settings{
		ContentIntSize: DefaultContentIntSize,
		IntListSize:    DefaultIntListSize,
	}
}

func (s Settings) validate() error {
	if s.ContentIntSize < minFieldWidth || s.ContentIntSize > maxFieldWidth {
		return errors.Wrapf(ErrFormat, "content_int_size %d outside [%d,%d]",
			s.ContentIntSize, minFieldWidth, maxFieldWidth)
	}
	if s.IntListSize < minFieldWidth || s.IntListSize > maxFieldWidth {
		return errors.Wrapf(ErrFormat, "int_list_size %d outside [%d,%d]",
			s.IntListSize, minFieldWidth, maxFieldWidth)
	}
	return nil
}

// encode renders the block exactly as stored on disk.
func (s Settings) encode() ([]byte, error) {
	text, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(text, record.Sentinel), nil
}

// readSettings consumes the Settings Block from the head of the file,
// leaving r positioned on the first record. Keys missing from the stored
// block keep their defaults; unrecognized keys are ignored.
func readSettings(r io.Reader) (Settings, error) {
	text, err := readToSentinel(r)
	if err != nil {
		return Settings{}, errors.Wrapf(ErrFormat, "settings block: %v", err)
	}

	s := defaultSettings()
	if err := json.Unmarshal(text, &s); err != nil {
		return Settings{}, errors.Wrapf(ErrFormat, "settings block: %v", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// readToSentinel reads single bytes up to, and consuming, the sentinel.
func readToSentinel(r io.Reader) ([]byte, error) {
	var out []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errors.New("no terminating sentinel byte")
			}
			return nil, err
		}
		if b[0] == record.Sentinel {
			return out, nil
		}
		out = append(out, b[0])
	}
}
