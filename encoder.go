package recordio

import (
	"github.com/unkn0wn-root/recordio/internal/wire"
)

// Encoder wraps messages into RecordIO frames.
// It holds no mutable state and is safe for concurrent use.
type Encoder[V any] struct {
	ser Serializer[V]
}

func NewEncoder[V any](s Serializer[V]) *Encoder[V] {
	return &Encoder[V]{ser: s}
}

// Encode serializes v and returns "<len>\n<payload>".
// A zero-length payload encodes as "0\n".
func (e *Encoder[V]) Encode(v V) ([]byte, error) {
	return e.AppendEncode(nil, v)
}

// AppendEncode is like Encode but appends the frame to dst.
// On error dst is returned unchanged.
func (e *Encoder[V]) AppendEncode(dst []byte, v V) ([]byte, error) {
	payload, err := e.ser.Encode(v)
	if err != nil {
		return dst, err
	}
	return wire.AppendFrame(dst, payload), nil
}
