package recordio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/unkn0wn-root/recordio/internal/wire"
)

// Mode is the position of a Decoder within a frame.
type Mode uint8

const (
	ModeHeader Mode = iota // reading "<len>\n"
	ModeRecord             // reading payload bytes
	ModeFailed             // a header did not parse; terminal
)

func (m Mode) String() string {
	switch m {
	case ModeHeader:
		return "HEADER"
	case ModeRecord:
		return "RECORD"
	case ModeFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Decoder turns an incrementally arriving RecordIO byte stream back into
// messages. State carries over between Decode calls, so a frame may be split
// across any number of chunks.
//
// A Decoder must not be used concurrently. Use one per byte stream.
type Decoder[V any] struct {
	deser Deserializer[V]
	log   Logger
	hooks Hooks

	mode   Mode
	header []byte // bytes seen since the last frame boundary (ModeHeader)
	length int64  // declared payload size (ModeRecord)
	record []byte // payload bytes so far; len(record) < length in ModeRecord
	failed error  // returned by every call once mode == ModeFailed
}

func NewDecoder[V any](d Deserializer[V], opts ...Option) *Decoder[V] {
	cfg := newConfig(opts)
	return &Decoder[V]{
		deser: d,
		log:   cfg.log,
		hooks: cfg.hooks,
		mode:  ModeHeader,
	}
}

// Mode reports the current state.
func (d *Decoder[V]) Mode() Mode { return d.mode }

// InFrame reports whether a partial frame (header or payload) is buffered.
// It is false exactly when the stream so far ends on a frame boundary.
func (d *Decoder[V]) InFrame() bool {
	return d.mode == ModeRecord || (d.mode == ModeHeader && len(d.header) > 0)
}

// DecodeValue is Decode for callers holding an untyped value. Anything other
// than []byte fails with ErrInvalidInputType and leaves the decoder untouched.
func (d *Decoder[V]) DecodeValue(data any) ([]V, error) {
	b, ok := data.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidInputType, data)
	}
	return d.Decode(b)
}

// Decode consumes chunk and returns the messages whose frames completed in
// it, in stream order.
//
// A header that is not a base-10 integer fails the call with a
// *MalformedLengthError (matching ErrMalformedLength), discards anything
// decoded earlier in the same call and puts the decoder in ModeFailed. From
// then on Decode returns ErrDecoderFailed without looking at its input.
//
// A deserializer error does not stop decoding: the frame is dropped, the rest
// of the chunk is processed, and the call returns every message that did
// decode together with the joined *DeserializeError values. The deserializer's
// own error is not returned as-is; it is the Err of its *DeserializeError and
// stays reachable through errors.Is and errors.As.
//
// Lengths <= 0 denote an empty payload, which is deserialized immediately.
func (d *Decoder[V]) Decode(chunk []byte) ([]V, error) {
	if d.mode == ModeFailed {
		return nil, d.failed
	}

	var (
		out  []V
		errs []error
	)
	for len(chunk) > 0 {
		switch d.mode {
		case ModeHeader:
			i := bytes.IndexByte(chunk, wire.Delim)
			if i < 0 {
				d.header = append(d.header, chunk...)
				chunk = nil
				continue
			}
			d.header = append(d.header, chunk[:i]...)
			chunk = chunk[i+1:]

			n, err := wire.ParseLength(d.header)
			if err != nil {
				return nil, d.fail(err)
			}
			d.header = d.header[:0]

			if n <= 0 {
				out, errs = d.emit(out, errs, []byte{})
				continue
			}
			d.length = n
			d.record = d.record[:0]
			d.mode = ModeRecord

		case ModeRecord:
			need := d.length - int64(len(d.record))
			if need <= 0 {
				panic(fmt.Sprintf("recordio: record buffer overfilled (%d/%d)", len(d.record), d.length))
			}
			take := chunk
			if int64(len(take)) > need {
				take = take[:need]
			}
			d.record = append(d.record, take...)
			chunk = chunk[len(take):]

			if int64(len(d.record)) == d.length {
				d.mode = ModeHeader
				out, errs = d.emit(out, errs, d.record)
				d.record = d.record[:0]
			}
		}
	}
	return out, errors.Join(errs...)
}

func (d *Decoder[V]) emit(out []V, errs []error, payload []byte) ([]V, []error) {
	v, err := d.deser.Decode(payload)
	if err != nil {
		d.log.Debug("deserialize failed, record dropped", Fields{"len": len(payload), "err": err})
		d.hooks.DeserializeFailed(len(payload), err)
		return out, append(errs, &DeserializeError{Length: len(payload), Err: err})
	}
	d.hooks.RecordDecoded(len(payload))
	return append(out, v), errs
}

func (d *Decoder[V]) fail(cause error) error {
	header := bytes.Clone(d.header)
	err := &MalformedLengthError{Header: header, Err: cause}

	d.mode = ModeFailed
	d.header = nil
	d.record = nil
	d.failed = fmt.Errorf("%w: %w", ErrDecoderFailed, err)

	d.log.Warn("malformed record length, decoder failed", Fields{"header": string(header), "err": cause})
	d.hooks.MalformedLength(string(header), cause)
	return err
}
