// Package table reads pubinfo extract tables from a directory on disk.
package table

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
	"github.com/okian/pubinfo/pkg/metrics"
)

const (
	defaultMaxLineBytes = 16 << 20
	initialBufferBytes  = 64 << 10
)

// DefaultFiles returns the published file name of each table.
func DefaultFiles() map[model.Table]string {
	return map[model.Table]string{
		model.TableLegislators:   "LEGISLATOR_TBL.dat",
		model.TableBills:         "BILL_TBL.dat",
		model.TableBillVersions:  "BILL_VERSION_TBL.dat",
		model.TableMotions:       "BILL_MOTION_TBL.dat",
		model.TableVoteSummaries: "BILL_SUMMARY_VOTE_TBL.dat",
		model.TableVotes:         "BILL_DETAIL_VOTE_TBL.dat",
	}
}

// Reader yields decoded rows of the tables found in one directory.
// Every call to Rows opens the file again; nothing is cached.
type Reader struct {
	dir          string
	files        map[model.Table]string
	maxLineBytes int
}

// NewReader creates a Reader over dir.
func NewReader(dir string, opts ...Option) *Reader {
	r := &Reader{
		dir:          dir,
		files:        DefaultFiles(),
		maxLineBytes: defaultMaxLineBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the file backing a table.
func (r *Reader) Path(t model.Table) (string, error) {
	name, ok := r.files[t]
	if !ok {
		return "", fmt.Errorf("table %q: %w", t, model.ErrUnknownTable)
	}
	return filepath.Join(r.dir, name), nil
}

// Rows yields the rows of a table in file order. An error ends the sequence.
func (r *Reader) Rows(ctx context.Context, t model.Table) iter.Seq2[record.Row, error] {
	return func(yield func(record.Row, error) bool) {
		path, err := r.Path(t)
		if err != nil {
			yield(record.Row{}, err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			yield(record.Row{}, fmt.Errorf("table %s: %w", t, err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, min(initialBufferBytes, r.maxLineBytes)), r.maxLineBytes)
		line := 0
		for sc.Scan() {
			if err := ctx.Err(); err != nil {
				yield(record.Row{}, err)
				return
			}
			line++
			row := record.Decode(sc.Text())
			row.Line = line
			metrics.RecordRowRead(string(t))
			if !yield(row, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(record.Row{}, fmt.Errorf("table %s: line %d: %w", t, line+1, err))
		}
	}
}
