package recordio

// Hooks lightweight callbacks for high-signal decoder events.
// Implementations MUST be cheap and non-blocking.
// The decoder calls them inline while parsing.
type Hooks interface {
	// Header bytes did not parse as a length. The decoder is now failed.
	MalformedLength(header string, err error)

	// The deserializer rejected a complete payload of n bytes.
	// The decoder stays usable.
	DeserializeFailed(n int, err error)

	// A record with an n byte payload was decoded.
	RecordDecoded(n int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) MalformedLength(string, error) {}
func (NopHooks) DeserializeFailed(int, error)  {}
func (NopHooks) RecordDecoded(int)             {}
