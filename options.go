package recordio

type config struct {
	log      Logger
	hooks    Hooks
	readSize int
}

// Option configures a Decoder or Reader.
type Option func(*config)

// WithLogger sets the logger. nil disables logging.
func WithLogger(l Logger) Option {
	return func(c *config) { c.log = l }
}

// WithHooks sets the event hooks. nil disables them.
func WithHooks(h Hooks) Option {
	return func(c *config) { c.hooks = h }
}

// WithReadSize sets how many bytes a Reader requests from its source per Read.
// Values <= 0 keep the default (32 KiB). Ignored by a bare Decoder.
func WithReadSize(n int) Option {
	return func(c *config) { c.readSize = n }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	c.log = coalesce[Logger](c.log, NopLogger{})
	c.hooks = coalesce[Hooks](c.hooks, NopHooks{})
	if c.readSize <= 0 {
		c.readSize = defaultReadSize
	}
	return c
}
