package transcoder

// DefaultMaxDepth bounds value nesting for both directions.
const DefaultMaxDepth = 512

// Options configures an Encoder or Decoder.
type Options struct {
	// MaxDepth limits container nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// DisallowUnknownFields makes struct decode fail on mapping keys that
	// name no field. By default they are ignored.
	DisallowUnknownFields bool
}

// DefaultOptions returns the options used by NewEncoder and NewDecoder.
func DefaultOptions() Options {
	return Options{
		MaxDepth: DefaultMaxDepth,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
