package record

import (
	"fmt"

	"github.com/dacapoday/cursor"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Compression selects how record payloads are stored.
type Compression uint8

const (
	None Compression = iota
	Snappy
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a configuration name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	default:
		return None, errors.Errorf("unknown compression %q", name)
	}
}

// encode prepends the header byte to the payload.
func (c Compression) encode(data []byte) []byte {
	switch c {
	case Snappy:
		dst := make([]byte, 1+snappy.MaxEncodedLen(len(data)))
		dst[0] = byte(Snappy)
		n := len(snappy.Encode(dst[1:], data))
		return dst[:1+n]
	default:
		return append([]byte{byte(None)}, data...)
	}
}

// decode returns a caller-owned copy of the payload in val.
func decode(val []byte) ([]byte, error) {
	if len(val) == 0 {
		return nil, errors.Wrap(cursor.ErrCorrupt, "record without header")
	}
	switch Compression(val[0]) {
	case None:
		return append([]byte{}, val[1:]...), nil
	case Snappy:
		data, err := snappy.Decode(nil, val[1:])
		if err != nil {
			return nil, errors.Wrapf(cursor.ErrCorrupt, "snappy: %v", err)
		}
		if data == nil {
			data = []byte{}
		}
		return data, nil
	default:
		return nil, errors.Wrapf(cursor.ErrCorrupt, "record header %#x", val[0])
	}
}
