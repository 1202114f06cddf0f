package mapper

import "github.com/litetable/litetable-mapper/internal/query"

type options struct {
	families map[string]struct{}
	version  *int64
	exclude  map[string]struct{}
	fields   []string
	limit    int
	filters  []query.Filter
}

// Option tunes a single call.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFamilies restricts a save to fields stored in the given families.
func WithFamilies(families ...string) Option {
	return func(o *options) {
		if o.families == nil {
			o.families = make(map[string]struct{}, len(families))
		}
		for _, f := range families {
			o.families[f] = struct{}{}
		}
	}
}

// WithVersion writes at, or reads, one logical version.
func WithVersion(version int64) Option {
	return func(o *options) {
		o.version = &version
	}
}

// WithExclude skips fields on save.
func WithExclude(fields ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(fields))
		}
		for _, f := range fields {
			o.exclude[f] = struct{}{}
		}
	}
}

// WithFields reads only the given fields.
func WithFields(fields ...string) Option {
	return func(o *options) {
		o.fields = append(o.fields, fields...)
	}
}

// WithLimit caps the number of records a scan or query returns.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithFilter adds store filters to a read.
func WithFilter(filters ...query.Filter) Option {
	return func(o *options) {
		o.filters = append(o.filters, filters...)
	}
}
