// Package recordio implements "RecordIO" framing: a stream of variable-length
// records, each prefixed with its payload size in bytes as a base-10 ASCII
// integer terminated by a newline:
//
//	5\n
//	hello
//	6\n
//	world!
//
// The textual header is deliberate. Parsing a decimal integer is trivial in
// every language, whereas most other RecordIO flavours use a fixed 4-byte
// binary length.
//
// Components:
//   - Encoder[V]: stateless; turns one message into one frame using a Serializer[V].
//   - Decoder[V]: stateful streaming parser; accepts arbitrarily sized chunks and
//     returns every message whose frame completed within the chunk.
//   - Reader[V] / Writer[V]: io adapters over Decoder / Encoder.
//
// Serialization is pluggable. Any codec.Codec[V] is both a Serializer[V] and a
// Deserializer[V]:
//
//	enc := recordio.NewEncoder[Event](codec.JSON[Event]{})
//	dec := recordio.NewDecoder[Event](codec.JSON[Event]{})
//
//	frame, _ := enc.Encode(Event{Type: "ATTACH_CONTAINER_OUTPUT"})
//	events, err := dec.Decode(frame[:3]) // nothing yet
//	events, err = dec.Decode(frame[3:])  // one event
//
// A Decoder is not safe for concurrent use; give each byte stream its own.
// Encoders hold no mutable state and may be shared.
package recordio
