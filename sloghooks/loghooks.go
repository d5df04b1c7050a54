// Package sloghooks implements recordio.Hooks on top of log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/recordio"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DecodedEvery     uint64
	DeserializeEvery uint64
	// Optional header redactor. Defaults to a SHA-256 prefix, since a garbage
	// header is often a slice of somebody's payload.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodedCtr     atomic.Uint64
	deserializeCtr atomic.Uint64
}

var _ recordio.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(s string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(s)
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) MalformedLength(header string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("recordio.malformed_length",
		"header", h.redact(header),
		"header_len", len(header),
		"err", err)
}

func (h *Hooks) DeserializeFailed(n int, err error) {
	if h.l == nil || !sample(h.opts.DeserializeEvery, &h.deserializeCtr) {
		return
	}
	h.l.Warn("recordio.deserialize_failed",
		"len", n,
		"err", err)
}

func (h *Hooks) RecordDecoded(n int) {
	if h.l == nil || !sample(h.opts.DecodedEvery, &h.decodedCtr) {
		return
	}
	h.l.Debug("recordio.record_decoded", "len", n)
}
