package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/weddingportal/internal/common"
)

// Envelope is one frame on the transport channel.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Wrapped is the {"payload": x} shape some broadcasts use.
type Wrapped struct {
	Payload any `json:"payload"`
}

// Encode marshals an event frame. A nil payload is omitted.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
		env.Payload = raw
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return b, nil
}

// Decode parses a frame. Frames without an event name are malformed.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", common.ErrMalformedPayload)
	}
	return env, nil
}

// Unwrap normalizes the two payload shapes the same logical event may arrive
// in: if raw is a JSON object with a "payload" key, that value is returned,
// otherwise raw itself is the item.
func Unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return raw
	}
	if inner, ok := probe["payload"]; ok {
		return inner
	}
	return raw
}

// IsNull reports whether raw is absent or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// DecodeItem unwraps raw and decodes it into T.
func DecodeItem[T any](raw json.RawMessage) (T, error) {
	var v T
	inner := Unwrap(raw)
	if IsNull(inner) {
		return v, fmt.Errorf("%w: empty payload", common.ErrMalformedPayload)
	}
	if err := json.Unmarshal(inner, &v); err != nil {
		return v, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
	return v, nil
}

// DecodeList unwraps raw and decodes it as a JSON array of T. Anything that is
// not an array is rejected so callers keep their prior list.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	inner := bytes.TrimSpace(Unwrap(raw))
	if len(inner) == 0 || inner[0] != '[' {
		return nil, fmt.Errorf("%w: expected array", common.ErrMalformedPayload)
	}
	out := []T{}
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
	return out, nil
}
