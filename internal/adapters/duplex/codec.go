package duplex

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc's encoding package so the duplex
// service can be served and dialed without a protoc-compiled wire codec.
const codecName = "archetect-json"

// jsonCodec marshals gRPC messages as JSON instead of protobuf, so the
// duplex wire messages (usecases.ScriptMessage/usecases.ClientMessage) can be
// plain Go structs rather than generated .pb.go types.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
