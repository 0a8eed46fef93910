// Package bill assembles the bills document, joining each bill to the
// subject of its current version.
//
// Columns follow bill_tbl.sql and bill_version_tbl.sql in the pubinfo load
// archive.
package bill

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
)

// bill_version_tbl columns.
const (
	colVersionID      = 0
	colVersionSubject = 6
)

// bill_tbl columns.
const (
	colBillID      = 0
	colSessionNum  = 2
	colMeasureType = 3
	colMeasureNum  = 4
	colVersion     = 10
	colLocation    = 16
	colStatus      = 17
)

type entry struct {
	measureType string
	sessionNum  int
	measureNum  int
	subject     *string
	location    *string
	status      *string
}

// MeasureKey renders the display key of a bill, e.g. "AB-5" or "SBX1-12".
func MeasureKey(measureType string, sessionNum, measureNum int) string {
	session := ""
	if sessionNum > 0 {
		session = "X" + strconv.Itoa(sessionNum)
	}
	return measureType + session + "-" + strconv.Itoa(measureNum)
}

// Subjects maps bill version id to subject text. Later rows overwrite
// earlier rows with the same id.
func Subjects(ctx context.Context, src model.RowSource) (map[string]*string, error) {
	subjects := make(map[string]*string)
	for row, err := range src.Rows(ctx, model.TableBillVersions) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		id := c.Text(colVersionID)
		subject := c.Nullable(colVersionSubject)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableBillVersions, err)
		}
		subjects[id] = subject
	}
	return subjects, nil
}

// Assemble builds the bills document ordered by measure type, session
// number and measure number.
func Assemble(ctx context.Context, src model.RowSource) (*model.Bills, error) {
	subjects, err := Subjects(ctx, src)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]entry)
	var ids []string
	for row, err := range src.Rows(ctx, model.TableBills) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		id := c.Text(colBillID)
		sessionNum := c.Int(colSessionNum)
		measureType := c.Text(colMeasureType)
		measureNum := c.Int(colMeasureNum)
		version := c.Text(colVersion)
		location := c.Nullable(colLocation)
		status := c.Nullable(colStatus)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableBills, err)
		}
		subject, ok := subjects[version]
		if !ok {
			return nil, fmt.Errorf("%s: line %d: bill %q: version %q: %w",
				model.TableBills, row.Line, id, version, model.ErrMissingKey)
		}

		if _, seen := entries[id]; !seen {
			ids = append(ids, id)
		}
		entries[id] = entry{
			measureType: measureType,
			sessionNum:  sessionNum,
			measureNum:  measureNum,
			subject:     subject,
			location:    location,
			status:      status,
		}
	}

	slices.SortStableFunc(ids, func(a, b string) int {
		x, y := entries[a], entries[b]
		return cmp.Or(
			cmp.Compare(x.measureType, y.measureType),
			cmp.Compare(x.sessionNum, y.sessionNum),
			cmp.Compare(x.measureNum, y.measureNum),
		)
	})

	bills := model.NewBills()
	for _, id := range ids {
		e := entries[id]
		bills.Set(id, model.Bill{
			Measure:  MeasureKey(e.measureType, e.sessionNum, e.measureNum),
			Subject:  e.subject,
			Location: e.location,
			Status:   e.status,
		})
	}
	return bills, nil
}
