package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.User { return &mypb.User{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// Structpb stores JSON-shaped values (nil, bool, numbers, string, []any,
// map[string]any) as a google.protobuf.Value. Numbers decode as float64.
type Structpb struct{}

var structValue = NewProtobuf(func() *structpb.Value { return &structpb.Value{} })

func (Structpb) Encode(v any) ([]byte, error) {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, err
	}
	return structValue.Encode(pv)
}

func (Structpb) Decode(b []byte) (any, error) {
	pv, err := structValue.Decode(b)
	if err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}
