package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// CodecName is the Connect codec name the JSON codec registers under. It
// matches the application/json content type.
const CodecName = "json"

// JSONCodec marshals plain Go structs with encoding/json. Unknown fields are
// rejected on decode.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// WithJSON registers JSONCodec on a Connect client or handler. On a client it
// also selects JSON for requests.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
