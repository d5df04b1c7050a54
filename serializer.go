package recordio

import "fmt"

// Serializer turns a message into its payload bytes.
// Every codec.Codec[V] is a Serializer[V].
type Serializer[V any] interface {
	Encode(V) ([]byte, error)
}

// Deserializer turns a complete payload back into a message.
// Every codec.Codec[V] is a Deserializer[V].
//
// The payload slice is owned by the Decoder and reused for the next record;
// implementations must copy it if they keep it past the call.
type Deserializer[V any] interface {
	Decode([]byte) (V, error)
}

// SerializeFunc adapts a plain function to Serializer.
type SerializeFunc[V any] func(V) ([]byte, error)

func (f SerializeFunc[V]) Encode(v V) ([]byte, error) { return f(v) }

// DeserializeFunc adapts a plain function to Deserializer.
type DeserializeFunc[V any] func([]byte) (V, error)

func (f DeserializeFunc[V]) Decode(b []byte) (V, error) { return f(b) }

// Dynamic adapts a serializer whose result type is only known at run time
// (plugin or reflection driven encoders). A result that is not a []byte makes
// Encode fail with ErrInvalidSerializationResult.
func Dynamic[V any](fn func(V) (any, error)) Serializer[V] {
	return dynamic[V](fn)
}

type dynamic[V any] func(V) (any, error)

func (f dynamic[V]) Encode(v V) ([]byte, error) {
	res, err := f(v)
	if err != nil {
		return nil, err
	}
	b, ok := res.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidSerializationResult, res)
	}
	return b, nil
}
