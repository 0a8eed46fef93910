// Package recordtest provides an in-memory row source for tests.
package recordtest

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
)

// Source maps each table to its raw lines. Missing tables fail like an
// absent file would.
type Source map[model.Table][]string

// Rows decodes the lines of a table in order.
func (s Source) Rows(ctx context.Context, t model.Table) iter.Seq2[record.Row, error] {
	return func(yield func(record.Row, error) bool) {
		lines, ok := s[t]
		if !ok {
			yield(record.Row{}, fmt.Errorf("table %s: %w", t, model.ErrUnknownTable))
			return
		}
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				yield(record.Row{}, err)
				return
			}
			row := record.Decode(line)
			row.Line = i + 1
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Line joins fields with the tab delimiter.
func Line(fields ...string) string {
	return strings.Join(fields, record.Delimiter)
}

// Columns builds a line of n columns, filling the given positions and
// leaving every other column NULL.
func Columns(n int, values map[int]string) string {
	fields := make([]string, n)
	for i := range fields {
		if v, ok := values[i]; ok {
			fields[i] = v
		} else {
			fields[i] = record.Null
		}
	}
	return Line(fields...)
}
