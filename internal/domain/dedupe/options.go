package dedupe

// Option configures the in-memory deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds how many recordings are remembered. Once full, the
// oldest recording is forgotten. maxSize <= 0 keeps every key.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
