// Package sizex parses human-friendly byte sizes ("8MB", "512KiB", "1024")
// in JSON config files and environment variables.
package sizex

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Bytes is a byte count.
type Bytes int64

// Parse accepts anything humanize.ParseBytes does, including plain integers.
func Parse(raw string) (Bytes, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", raw, err)
	}
	return Bytes(v), nil
}

// Decode implements envconfig.Decoder.
func (b *Bytes) Decode(value string) error {
	v, err := Parse(value)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// UnmarshalJSON accepts a size string or a number of bytes.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*b = Bytes(value)
		return nil
	case string:
		return b.Decode(value)
	case nil:
		*b = 0
		return nil
	default:
		return fmt.Errorf("invalid size type %T", v)
	}
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Bytes) String() string {
	return humanize.IBytes(uint64(b))
}

func (b Bytes) Int64() int64 { return int64(b) }
