package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm selects the payload compression used by Compressed.
type Algorithm uint8

const (
	None Algorithm = iota
	Zstd
	LZ4
)

var errEmptyCompressed = errors.New("codec: empty compressed payload")

// Compressed wraps an inner codec and compresses its output.
//
// Payload: algo(1) | data
//
// Compression is kept only when it actually shrinks the payload, otherwise
// data is stored raw with algo=None. Decode accepts every algorithm
// regardless of the one configured for Encode.
// Safe for concurrent use. Call Close to release the zstd workers.
type Compressed[V any] struct {
	inner Codec[V]
	algo  Algorithm
	zenc  *zstd.Encoder
	zdec  *zstd.Decoder
}

var _ Codec[struct{}] = (*Compressed[struct{}])(nil)

func NewCompressed[V any](inner Codec[V], algo Algorithm) (*Compressed[V], error) {
	if inner == nil {
		return nil, errors.New("codec: inner codec is required")
	}
	if algo > LZ4 {
		return nil, fmt.Errorf("codec: unknown compression algorithm %d", algo)
	}
	zenc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	zdec, err := zstd.NewReader(nil)
	if err != nil {
		_ = zenc.Close()
		return nil, err
	}
	return &Compressed[V]{inner: inner, algo: algo, zenc: zenc, zdec: zdec}, nil
}

func (c *Compressed[V]) Encode(v V) ([]byte, error) {
	raw, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch c.algo {
	case Zstd:
		out = c.zenc.EncodeAll(raw, append(make([]byte, 0, len(raw)+1), byte(Zstd)))
	case LZ4:
		var buf bytes.Buffer
		buf.WriteByte(byte(LZ4))
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		out = buf.Bytes()
	}

	if out == nil || len(out) > len(raw) {
		out = append(append(make([]byte, 0, len(raw)+1), byte(None)), raw...)
	}
	return out, nil
}

func (c *Compressed[V]) Decode(b []byte) (V, error) {
	var zero V
	if len(b) == 0 {
		return zero, errEmptyCompressed
	}

	data := b[1:]
	switch Algorithm(b[0]) {
	case None:
	case Zstd:
		d, err := c.zdec.DecodeAll(data, nil)
		if err != nil {
			return zero, fmt.Errorf("zstd: %w", err)
		}
		data = d
	case LZ4:
		d, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return zero, fmt.Errorf("lz4: %w", err)
		}
		data = d
	default:
		return zero, fmt.Errorf("codec: unknown compression algorithm %d", b[0])
	}
	return c.inner.Decode(data)
}

func (c *Compressed[V]) Close() error {
	c.zdec.Close()
	return c.zenc.Close()
}
