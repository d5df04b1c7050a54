// Package codec provides payload codecs for RecordIO frames.
//
// A Codec[V] is both the serializer handed to an Encoder and the deserializer
// handed to a Decoder. Decoders reuse their payload buffer, so Decode
// implementations must not retain the input slice.
package codec

// Codec encodes/decodes values V to []byte payloads.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
