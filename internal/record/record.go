package record

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Byte values of the on-disk format. The sentinel doubles as the record
// start marker, the key terminator and the Settings Block terminator.
const (
	Sentinel byte = 0x00

	KeyTypeString byte = 0x01
	KeyTypeInt    byte = 0x02

	ContentString  byte = 0x01
	ContentInt     byte = 0x02
	ContentDict    byte = 0x03
	ContentIntList byte = 0x04
	ContentBytes   byte = 0x05
)

// Integer keys and plain integer content are stored as 8-byte little-endian
// two's complement.
const IntWidth = 8

var (
	// ErrUnsupportedType is returned when a key or value falls outside the
	// supported set, or cannot be represented at the configured field widths.
	// Nothing is written in either case.
	ErrUnsupportedType = errors.New("record: unsupported key or value type")

	// ErrFormat is returned when content bytes are structurally inconsistent
	// with their content type.
	ErrFormat = errors.New("record: malformed content")
)

// Key is a normalized database key: a string or an int64, discriminated by
// Type. Only the field matching Type is ever set, so Key values compare
// correctly and can be used directly as map keys.
type Key struct {
	Type byte
	Str  string
	Int  int64
}

// NewKey validates and normalizes a caller-supplied key.
func NewKey(key any) (Key, error) {
	switch k := key.(type) {
	case string:
		if strings.ContainsRune(k, 0) {
			return Key{}, errors.Wrap(ErrUnsupportedType, "string key contains a NUL byte")
		}
		return Key{Type: KeyTypeString, Str: k}, nil
	case int:
		return Key{Type: KeyTypeInt, Int: int64(k)}, nil
	case int64:
		return Key{Type: KeyTypeInt, Int: k}, nil
	default:
		return Key{}, errors.Wrapf(ErrUnsupportedType, "key of type %T", key)
	}
}

// Value returns the key as the dynamic type it was written with.
func (k Key) Value() any {
	if k.Type == KeyTypeInt {
		return k.Int
	}
	return k.Str
}

// Encode serializes one complete entry:
//
//	<start:0x00><key type><key><terminator:0x00><content length><content type><payload>
//
// The content-length field is contentIntSize bytes little-endian and counts
// the content-type byte plus the payload. The returned contentOffset is the
// position of the content-type byte within data, which is what the header
// index records.
func Encode(key Key, value any, contentIntSize, intListSize int) (data []byte, contentOffset int, err error) {
	content, err := EncodeContent(value, intListSize)
	if err != nil {
		return nil, 0, err
	}
	if contentIntSize < IntWidth && uint64(len(content)) >= uint64(1)<<(8*contentIntSize) {
		return nil, 0, errors.Wrapf(ErrUnsupportedType,
			"content of %d bytes does not fit a %d-byte length field", len(content), contentIntSize)
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(Sentinel)

	switch key.Type {
	case KeyTypeString:
		buf.WriteByte(KeyTypeString)
		buf.WriteString(key.Str)
	case KeyTypeInt:
		buf.WriteByte(KeyTypeInt)
		var kb [IntWidth]byte
		binary.LittleEndian.PutUint64(kb[:], uint64(key.Int))
		buf.Write(kb[:])
	default:
		return nil, 0, errors.Wrapf(ErrUnsupportedType, "key type byte %#x", key.Type)
	}
	buf.WriteByte(Sentinel)

	lenBytes := make([]byte, contentIntSize)
	putUintLE(lenBytes, uint64(len(content)))
	buf.Write(lenBytes)

	contentOffset = buf.Len()
	buf.Write(content)

	return buf.Bytes(), contentOffset, nil
}

// EncodeContent serializes a value as <content type><payload>.
func EncodeContent(value any, intListSize int) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return append([]byte{ContentString}, v...), nil
	case int:
		return encodeInt(int64(v)), nil
	case int64:
		return encodeInt(v), nil
	case map[string]any:
		text, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedType, "dictionary is not JSON-representable: %v", err)
		}
		return append([]byte{ContentDict}, text...), nil
	case []int:
		list := make([]int64, len(v))
		for i, el := range v {
			list[i] = int64(el)
		}
		return encodeIntList(list, intListSize)
	case []int64:
		return encodeIntList(v, intListSize)
	case []byte:
		return append([]byte{ContentBytes}, v...), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "value of type %T", value)
	}
}

// DecodeContent is the inverse of EncodeContent. content is the stored
// content-type byte followed by the payload.
func DecodeContent(content []byte, intListSize int) (any, error) {
	if len(content) == 0 {
		return nil, errors.Wrap(ErrFormat, "empty content")
	}
	tag, payload := content[0], content[1:]

	switch tag {
	case ContentString:
		return string(payload), nil
	case ContentInt:
		// Shorter payloads are accepted and zero-extended so files written
		// with a narrower integer width still read.
		if len(payload) == 0 || len(payload) > IntWidth {
			return nil, errors.Wrapf(ErrFormat, "integer payload of %d bytes", len(payload))
		}
		return int64(UintLE(payload)), nil
	case ContentDict:
		var dict map[string]any
		if err := json.Unmarshal(payload, &dict); err != nil {
			return nil, errors.Wrapf(ErrFormat, "dictionary payload: %v", err)
		}
		return dict, nil
	case ContentIntList:
		if len(payload)%intListSize != 0 {
			return nil, errors.Wrapf(ErrFormat,
				"integer list payload of %d bytes is not a multiple of the %d-byte element width",
				len(payload), intListSize)
		}
		list := make([]int64, 0, len(payload)/intListSize)
		for i := 0; i < len(payload); i += intListSize {
			list = append(list, int64(UintLE(payload[i:i+intListSize])))
		}
		return list, nil
	case ContentBytes:
		return append([]byte(nil), payload...), nil
	default:
		return nil, errors.Wrapf(ErrFormat, "unknown content type byte %#x", tag)
	}
}

// ValidContentType reports whether tag is one of the enumerated content
// type bytes.
func ValidContentType(tag byte) bool {
	return tag >= ContentString && tag <= ContentBytes
}

func encodeInt(v int64) []byte {
	out := make([]byte, 1+IntWidth)
	out[0] = ContentInt
	binary.LittleEndian.PutUint64(out[1:], uint64(v))
	return out
}

func encodeIntList(list []int64, width int) ([]byte, error) {
	out := make([]byte, 1, 1+len(list)*width)
	out[0] = ContentIntList
	for _, el := range list {
		if width < IntWidth && (el < 0 || el >= int64(1)<<(8*width)) {
			return nil, errors.Wrapf(ErrUnsupportedType,
				"integer %d does not fit in a %d-byte list element", el, width)
		}
		var b [IntWidth]byte
		binary.LittleEndian.PutUint64(b[:], uint64(el))
		out = append(out, b[:width]...)
	}
	return out, nil
}

// putUintLE writes v little-endian into all of b, for widths encoding/binary
// has no fixed type for.
func putUintLE(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

// UintLE reads a little-endian unsigned integer of len(b) bytes.
func UintLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
