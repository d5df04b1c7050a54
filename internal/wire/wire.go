package wire

import (
	"strconv"
)

// Delim terminates every frame header.
const Delim byte = '\n'

// Frame: len(decimal ASCII) | '\n' | payload(len)
//
// No trailer, no padding, no escaping. The payload may contain Delim since its
// length is explicit.

// AppendHeader appends the header for a payload of n bytes to dst.
func AppendHeader(dst []byte, n int) []byte {
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, Delim)
}

// HeaderLen returns the size of the header AppendHeader writes for n.
func HeaderLen(n int) int {
	l := 2 // at least one digit + Delim
	for n >= 10 {
		n /= 10
		l++
	}
	return l
}

// AppendFrame appends a complete frame (header + payload) to dst.
func AppendFrame(dst, payload []byte) []byte {
	if cap(dst)-len(dst) < HeaderLen(len(payload))+len(payload) {
		grown := make([]byte, len(dst), len(dst)+HeaderLen(len(payload))+len(payload))
		copy(grown, dst)
		dst = grown
	}
	dst = AppendHeader(dst, len(payload))
	return append(dst, payload...)
}

// ParseLength parses the header bytes (without Delim) as a base-10 integer.
// Signs are accepted; anything else strconv rejects (empty input, whitespace,
// non-digits, values outside int64) is returned as an error.
func ParseLength(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}
