package util

import (
	"crypto/sha256"
	"fmt"
)

// maxStreamKey bounds the stream part of a storage key. Longer names are
// replaced by a short hash so keys stay within store limits.
const maxStreamKey = 128

// SegmentKey returns "<prefix>:<stream>:<seq>" with seq zero-padded to 20
// digits, so keys of one stream sort in segment order.
func SegmentKey(prefix, stream string, seq uint64) string {
	return fmt.Sprintf("%s:%s:%020d", prefix, streamKey(stream), seq)
}

func streamKey(stream string) string {
	if len(stream) <= maxStreamKey {
		return stream
	}
	sum := sha256.Sum256([]byte(stream))
	return fmt.Sprintf("h%x", sum[:8])
}
