package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// JSONCodec is a connect codec for plain Go request and response structs.
// It replaces connect's protojson codec under the same "json" name.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	if dec.More() {
		return fmt.Errorf("unmarshal %T: trailing data", v)
	}
	return nil
}

// WithJSON returns the handler options every JSON-only service needs.
func WithJSON(interceptors ...connect.Interceptor) []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(interceptors...),
	}
}
