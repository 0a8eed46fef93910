package vote

import "time"

// Option applies a configuration option to an assembly run.
type Option func(*assembler)

// WithLocation sets the zone vote timestamps are recorded in.
func WithLocation(loc *time.Location) Option {
	return func(a *assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}
