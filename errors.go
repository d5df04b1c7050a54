package recordio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSerializationResult is returned by Encode when the serializer
	// produced something other than raw bytes.
	ErrInvalidSerializationResult = errors.New("recordio: serializer must return []byte")

	// ErrInvalidInputType is returned by DecodeValue for anything but []byte.
	// The decoder state is left untouched.
	ErrInvalidInputType = errors.New("recordio: decode input must be []byte")

	// ErrMalformedLength matches every *MalformedLengthError.
	ErrMalformedLength = errors.New("recordio: malformed record length")

	// ErrDecoderFailed is returned by every Decode call after a malformed
	// length header. Construct a new Decoder to continue.
	ErrDecoderFailed = errors.New("recordio: decoder is in a failed state")
)

// MalformedLengthError reports header bytes that do not parse as a base-10
// integer. It is terminal for the Decoder that returned it.
type MalformedLengthError struct {
	Header []byte // offending header, without the trailing newline
	Err    error  // underlying parse error
}

func (e *MalformedLengthError) Error() string {
	return fmt.Sprintf("recordio: failed to decode length %q: %v", e.Header, e.Err)
}

func (e *MalformedLengthError) Unwrap() error { return e.Err }

func (e *MalformedLengthError) Is(target error) bool { return target == ErrMalformedLength }

// DeserializeError wraps a failure of the caller's deserializer for one
// complete payload. The frame has already been consumed, so the decoder keeps
// going with the next one.
type DeserializeError struct {
	Length int // payload size in bytes
	Err    error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("recordio: deserialize %d byte record: %v", e.Length, e.Err)
}

func (e *DeserializeError) Unwrap() error { return e.Err }
