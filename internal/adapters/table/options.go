package table

import "github.com/okian/pubinfo/internal/domain/model"

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithMaxLineBytes bounds the length of a single line.
func WithMaxLineBytes(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxLineBytes = n
		}
	}
}

// WithFiles overrides the file name used for one or more tables.
func WithFiles(files map[model.Table]string) Option {
	return func(r *Reader) {
		for t, name := range files {
			if name != "" {
				r.files[t] = name
			}
		}
	}
}
