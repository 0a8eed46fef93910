// Package legislator assembles the legislators document and the canonical
// author ordering used by every other document.
//
// Columns follow legislator_tbl.sql in the pubinfo load archive.
package legislator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
)

const (
	colDistrict = 0
	colName     = 2
	colHouse    = 3
	colAuthor   = 4
	colParty    = 11
)

// NameSeparator splits "last[, suffix], first" full names.
const NameSeparator = ", "

// Result is the output of Assemble.
type Result struct {
	Roster *model.Roster
	// Authors is every author name sorted by district, ties in file order.
	Authors []string
	// Duplicates counts rows whose author name was already seen.
	Duplicates int
}

type entry struct {
	house    string
	district string
	party    *string
	display  string
}

// Assemble reads the legislators table and builds the roster.
// A repeated author name keeps its first position; its attributes come from
// the last row.
func Assemble(ctx context.Context, src model.RowSource) (*Result, error) {
	entries := make(map[string]entry)
	var authors []string
	dups := 0

	for row, err := range src.Rows(ctx, model.TableLegislators) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		district := c.Text(colDistrict)
		fullName := c.Text(colName)
		house := c.Text(colHouse)
		author := c.Text(colAuthor)
		party := c.Nullable(colParty)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableLegislators, err)
		}
		display, err := DisplayName(fullName)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", model.TableLegislators, row.Line, err)
		}

		if _, seen := entries[author]; seen {
			dups++
		} else {
			authors = append(authors, author)
		}
		entries[author] = entry{
			house:    house,
			district: district,
			party:    party,
			display:  display,
		}
	}

	slices.SortStableFunc(authors, func(a, b string) int {
		return strings.Compare(entries[a].district, entries[b].district)
	})

	roster := model.NewRoster()
	for _, author := range authors {
		e := entries[author]
		members := roster.House(e.house)
		if members == nil {
			return nil, fmt.Errorf("%s: author %q: house %q: %w",
				model.TableLegislators, author, e.house, record.ErrMalformedField)
		}
		members.Set(author, model.Legislator{
			District:    e.district,
			Party:       e.party,
			DisplayName: e.display,
		})
	}

	return &Result{Roster: roster, Authors: authors, Duplicates: dups}, nil
}

// DisplayName turns "last[, suffix], first" into "first last[, suffix]".
func DisplayName(fullName string) (string, error) {
	parts := strings.Split(fullName, NameSeparator)
	if len(parts) < 2 {
		return "", fmt.Errorf("name %q has no %q: %w", fullName, NameSeparator, record.ErrMalformedField)
	}
	last := len(parts) - 1
	return parts[last] + " " + strings.Join(parts[:last], NameSeparator), nil
}
