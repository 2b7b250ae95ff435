package rank

// Option tunes a single Rank call.
type Option func(*options)

type options struct {
	top              int
	alignment        bool
	excludeReference bool
}

// WithTop keeps only the n closest candidates. n <= 0 keeps all of them.
func WithTop(n int) Option {
	return func(o *options) { o.top = n }
}

// WithAlignment attaches an alignment to every returned candidate.
func WithAlignment(enabled bool) Option {
	return func(o *options) { o.alignment = enabled }
}

// WithExcludeReference drops candidates sharing the reference identifier.
func WithExcludeReference(enabled bool) Option {
	return func(o *options) { o.excludeReference = enabled }
}
