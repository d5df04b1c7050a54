package recordio

import (
	"errors"
	"io"
)

// Writer frames messages onto an io.Writer, one Write call per message.
// It reuses an internal buffer and must not be used concurrently.
type Writer[V any] struct {
	w   io.Writer
	enc *Encoder[V]
	buf []byte
}

func NewWriter[V any](w io.Writer, s Serializer[V]) *Writer[V] {
	return &Writer[V]{w: w, enc: NewEncoder(s)}
}

// Write encodes v and writes the whole frame.
func (w *Writer[V]) Write(v V) error {
	b, err := w.enc.AppendEncode(w.buf[:0], v)
	if err != nil {
		return err
	}
	w.buf = b
	_, err = w.w.Write(b)
	return err
}

// maxConsecutiveEmptyReads bounds how many (0, nil) reads Next tolerates
// before giving up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

// Reader pulls bytes from an io.Reader through a Decoder and hands out one
// message at a time.
type Reader[V any] struct {
	r     io.Reader
	dec   *Decoder[V]
	buf   []byte
	queue []V
	err   error // sticky source or framing error
	empty int   // consecutive reads that returned (0, nil)
}

func NewReader[V any](r io.Reader, d Deserializer[V], opts ...Option) *Reader[V] {
	cfg := newConfig(opts)
	return &Reader[V]{
		r:   r,
		dec: NewDecoder(d, opts...),
		buf: make([]byte, cfg.readSize),
	}
}

// Next returns the next message.
//
// At the end of the source it returns io.EOF when the stream ended on a frame
// boundary and io.ErrUnexpectedEOF when it ended inside a frame. A malformed
// length is sticky like any source error, and so is io.ErrNoProgress, returned
// when the source keeps answering Read with (0, nil). A *DeserializeError is
// returned once; messages decoded alongside it are still delivered by later
// calls.
func (r *Reader[V]) Next() (V, error) {
	var zero V
	for len(r.queue) == 0 {
		if r.err != nil {
			return zero, r.err
		}

		n, rerr := r.r.Read(r.buf)
		if n == 0 && rerr == nil {
			if r.empty++; r.empty >= maxConsecutiveEmptyReads {
				r.err = io.ErrNoProgress
			}
			continue
		}
		r.empty = 0

		var derr error
		if n > 0 {
			var msgs []V
			msgs, derr = r.dec.Decode(r.buf[:n])
			r.queue = append(r.queue, msgs...)
			if errors.Is(derr, ErrMalformedLength) {
				r.err = derr
				continue
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) && r.dec.InFrame() {
				rerr = io.ErrUnexpectedEOF
			}
			r.err = rerr
		}
		if derr != nil {
			return zero, derr
		}
	}

	v := r.queue[0]
	r.queue[0] = zero
	r.queue = r.queue[1:]
	return v, nil
}

// Decoder exposes the underlying decoder, e.g. to inspect its Mode.
func (r *Reader[V]) Decoder() *Decoder[V] { return r.dec }
