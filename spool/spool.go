// Package spool keeps a durable, replayable log of messages on top of a byte
// store. Each Append writes one segment: the RecordIO frames of its messages,
// concatenated. Segments are numbered per stream by a seqstore.SeqStore and
// replayed in order through a fresh recordio.Decoder.
//
//	sp, _ := spool.New(spool.Options[Event]{
//	    Stream:   "container-123",
//	    Provider: provider,
//	    Codec:    codec.JSON[Event]{},
//	})
//	seq, _ := sp.Append(ctx, ev1, ev2)
//	_, _ = sp.Replay(ctx, 1, func(seq uint64, ev Event) error { ... })
package spool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/unkn0wn-root/recordio"
	c "github.com/unkn0wn-root/recordio/codec"
	"github.com/unkn0wn-root/recordio/internal/util"
	pr "github.com/unkn0wn-root/recordio/provider"
	"github.com/unkn0wn-root/recordio/seqstore"
)

var (
	ErrNoMessages = errors.New("spool: append needs at least one message")
	ErrRejected   = errors.New("spool: segment rejected by provider")
	ErrTruncated  = errors.New("spool: segment ends inside a frame")
)

// Options configure a Spool. Stream, Provider and Codec are required.
type Options[V any] struct {
	Stream   string // logical stream name, e.g. a container or connection ID
	Provider pr.Provider
	Codec    c.Codec[V]

	// SeqStore numbers segments. When nil, an in-process seqstore.Local is
	// used and the spool keeps a head marker next to its segments in Provider:
	// a spool reopened over the same Provider resumes numbering after the
	// highest segment it finds and never overwrites a stored segment. Use a
	// shared store (seqstore.Redis) when several processes append to one
	// stream.
	SeqStore    seqstore.SeqStore
	TTL         time.Duration     // segment TTL; 0 => no expiry
	ReplayChunk int               // bytes per Decode call when reading a segment; 0 => whole segment
	Logger      recordio.Logger   // nil => NopLogger
	Hooks       recordio.Hooks    // passed to every segment decoder; nil => NopHooks
}

// ReplayStats summarizes a Replay run.
type ReplayStats struct {
	Segments int // segments read
	Missing  int // segments evicted, expired or trimmed
	Messages int // messages delivered
}

type Spool[V any] struct {
	stream      string
	provider    pr.Provider
	enc         *recordio.Encoder[V]
	codec       c.Codec[V]
	seq         seqstore.SeqStore
	ttl         time.Duration
	replayChunk int
	log         recordio.Logger
	hooks       recordio.Hooks

	local  *seqstore.Local // set when numbering is seeded from the provider
	seedMu sync.Mutex
	seeded bool
}

func New[V any](opts Options[V]) (*Spool[V], error) {
	if opts.Stream == "" {
		return nil, fmt.Errorf("spool: stream is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("spool: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("spool: codec is required")
	}

	s := &Spool[V]{
		stream:      opts.Stream,
		provider:    opts.Provider,
		enc:         recordio.NewEncoder[V](opts.Codec),
		codec:       opts.Codec,
		ttl:         opts.TTL,
		replayChunk: opts.ReplayChunk,
		log:         opts.Logger,
		hooks:       opts.Hooks,
	}
	if s.log == nil {
		s.log = recordio.NopLogger{}
	}
	if s.hooks == nil {
		s.hooks = recordio.NopHooks{}
	}
	if opts.SeqStore != nil {
		s.seq = opts.SeqStore
	} else {
		s.local = seqstore.NewLocal(0, 0)
		s.seq = s.local
	}
	return s, nil
}

func (s *Spool[V]) key(seq uint64) string {
	return util.SegmentKey("spool", s.stream, seq)
}

// headKey holds the highest segment number written through a local seqstore.
// Segment numbers start at 1, so slot 0 is free.
func (s *Spool[V]) headKey() string { return s.key(0) }

// seed advances the local counter past segments already in the provider. It
// runs once, on the first call that needs numbering; a failed attempt is
// retried by the next call.
func (s *Spool[V]) seed(ctx context.Context) error {
	if s.local == nil {
		return nil
	}
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	if s.seeded {
		return nil
	}

	var head uint64
	raw, ok, err := s.provider.Get(ctx, s.headKey())
	if err != nil {
		return fmt.Errorf("spool: read head marker: %w", err)
	}
	if ok {
		if head, err = strconv.ParseUint(string(raw), 10, 64); err != nil {
			s.log.Warn("ignoring bad head marker", recordio.Fields{"stream": s.stream, "err": err})
			head = 0
		}
	}
	// the marker may lag behind or be evicted; walk forward over stored segments
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, ok, err := s.provider.Get(ctx, s.key(head+1))
		if err != nil {
			return fmt.Errorf("spool: probe segment %d: %w", head+1, err)
		}
		if !ok {
			break
		}
		head++
	}

	s.local.Seed(s.stream, head)
	s.seeded = true
	if head > 0 {
		s.log.Debug("segment numbering resumed", recordio.Fields{"stream": s.stream, "head": head})
	}
	return nil
}

// allocate returns the next free segment number. With a local seqstore it
// skips numbers whose slot is already taken in the provider.
func (s *Spool[V]) allocate(ctx context.Context) (uint64, error) {
	for {
		seq, err := s.seq.Next(ctx, s.stream)
		if err != nil || s.local == nil {
			return seq, err
		}
		_, taken, err := s.provider.Get(ctx, s.key(seq))
		if err != nil {
			return 0, err
		}
		if !taken {
			return seq, nil
		}
		s.log.Warn("segment slot taken, skipping", recordio.Fields{"stream": s.stream, "seq": seq})
	}
}

// Append encodes msgs into a single segment, stores it and returns its number.
// Nothing is stored if any message fails to encode.
func (s *Spool[V]) Append(ctx context.Context, msgs ...V) (uint64, error) {
	if len(msgs) == 0 {
		return 0, ErrNoMessages
	}

	var seg []byte
	for i, m := range msgs {
		var err error
		if seg, err = s.enc.AppendEncode(seg, m); err != nil {
			return 0, fmt.Errorf("spool: encode message %d: %w", i, err)
		}
	}

	if err := s.seed(ctx); err != nil {
		return 0, err
	}
	seq, err := s.allocate(ctx)
	if err != nil {
		return 0, fmt.Errorf("spool: allocate segment: %w", err)
	}
	ok, err := s.provider.Set(ctx, s.key(seq), seg, s.ttl)
	if err != nil {
		return 0, fmt.Errorf("spool: store segment %d: %w", seq, err)
	}
	if !ok {
		s.log.Warn("segment rejected by provider", recordio.Fields{"stream": s.stream, "seq": seq, "bytes": len(seg)})
		return seq, ErrRejected
	}
	if s.local != nil {
		if _, err := s.provider.Set(ctx, s.headKey(), strconv.AppendUint(nil, seq, 10), 0); err != nil {
			s.log.Warn("head marker not updated", recordio.Fields{"stream": s.stream, "seq": seq, "err": err})
		}
	}
	s.log.Debug("segment stored", recordio.Fields{"stream": s.stream, "seq": seq, "records": len(msgs), "bytes": len(seg)})
	return seq, nil
}

// Segment reads and decodes one segment. ok is false when it is not stored.
func (s *Spool[V]) Segment(ctx context.Context, seq uint64) (msgs []V, ok bool, err error) {
	raw, ok, err := s.provider.Get(ctx, s.key(seq))
	if err != nil || !ok {
		return nil, false, err
	}
	msgs, err = s.decode(raw)
	if err != nil {
		return msgs, true, fmt.Errorf("spool: segment %d: %w", seq, err)
	}
	return msgs, true, nil
}

func (s *Spool[V]) decode(raw []byte) ([]V, error) {
	dec := recordio.NewDecoder[V](s.codec, recordio.WithLogger(s.log), recordio.WithHooks(s.hooks))

	chunk := s.replayChunk
	if chunk <= 0 || chunk > len(raw) {
		chunk = len(raw)
	}

	var (
		out  []V
		errs []error
	)
	for off := 0; off < len(raw); off += chunk {
		end := min(off+chunk, len(raw))
		msgs, err := dec.Decode(raw[off:end])
		out = append(out, msgs...)
		if err != nil {
			if errors.Is(err, recordio.ErrMalformedLength) {
				return nil, err
			}
			errs = append(errs, err)
		}
	}
	if dec.InFrame() {
		errs = append(errs, ErrTruncated)
	}
	return out, errors.Join(errs...)
}

// Replay delivers every stored message of segments from..Current in order.
// Missing segments are skipped and counted. Replay stops at the first decode
// error, fn error or context cancellation.
func (s *Spool[V]) Replay(ctx context.Context, from uint64, fn func(seq uint64, v V) error) (ReplayStats, error) {
	var st ReplayStats
	last, err := s.Last(ctx)
	if err != nil {
		return st, fmt.Errorf("spool: read current segment: %w", err)
	}
	if from == 0 {
		from = 1
	}

	for seq := from; seq <= last; seq++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		msgs, ok, err := s.Segment(ctx, seq)
		if err != nil {
			return st, err
		}
		if !ok {
			st.Missing++
			continue
		}
		st.Segments++
		for _, m := range msgs {
			if err := fn(seq, m); err != nil {
				return st, err
			}
			st.Messages++
		}
	}
	return st, nil
}

// Trim deletes segments 1..through; through is capped at Last. Deletes are
// best-effort: the first provider error is returned after all deletes were
// attempted. Cancelling ctx stops the walk.
func (s *Spool[V]) Trim(ctx context.Context, through uint64) error {
	last, err := s.Last(ctx)
	if err != nil {
		return fmt.Errorf("spool: read current segment: %w", err)
	}
	through = min(through, last)

	var first error
	for seq := uint64(1); seq <= through; seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.provider.Del(ctx, s.key(seq)); err != nil && first == nil {
			first = err
		}
	}
	s.log.Debug("segments trimmed", recordio.Fields{"stream": s.stream, "through": through})
	return first
}

// Last returns the number of the most recently allocated segment.
func (s *Spool[V]) Last(ctx context.Context) (uint64, error) {
	if err := s.seed(ctx); err != nil {
		return 0, err
	}
	return s.seq.Current(ctx, s.stream)
}

// Close closes the seqstore and the provider.
func (s *Spool[V]) Close(ctx context.Context) error {
	return errors.Join(s.seq.Close(ctx), s.provider.Close(ctx))
}
