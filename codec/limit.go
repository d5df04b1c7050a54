package codec

import "fmt"

// Limit wraps another codec to reject payloads larger than MaxDecode bytes
// before they reach Inner. Encode is forwarded unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// The framing layer itself never limits record size; use this when frames come
// from an untrusted peer and the message type has a known upper bound.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int // bytes
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
