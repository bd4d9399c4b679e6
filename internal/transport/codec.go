// Package transport carries Raft peer RPCs (spec.md §4.1 RequestVote and
// AppendEntries) over gRPC, grounded on the teacher's raftserver package but
// without protoc: there is no .proto/.pb.go generation step available here,
// so wire messages are the same plain Go structs internal/raft already uses,
// framed with a custom grpc encoding.Codec that marshals them as JSON. This
// keeps google.golang.org/grpc itself (connection management, HTTP/2
// framing, deadlines) fully in play; only the protobuf code-generation layer
// is replaced. See DESIGN.md for why golang/protobuf was dropped instead.
package transport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements google.golang.org/grpc/encoding.Codec. Unlike the
// proto codec it does not require messages to implement proto.Message —
// grpc-go's Codec interface only asks for Marshal/Unmarshal against
// interface{}, which is exactly the extension point this relies on.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
