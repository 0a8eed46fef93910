// Package model contains the documents assembled from the extract tables and
// passed between the assemblers and the stores.
package model

import (
	"context"
	"iter"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/okian/pubinfo/internal/domain/record"
)

// Table names a logical extract table.
type Table string

// Extract tables consumed by a run.
const (
	TableLegislators   Table = "legislators"
	TableBills         Table = "bills"
	TableBillVersions  Table = "bill_versions"
	TableMotions       Table = "motions"
	TableVoteSummaries Table = "vote_summaries"
	TableVotes         Table = "votes"
)

// Tables lists every table in the order a run reads them.
func Tables() []Table {
	return []Table{
		TableLegislators,
		TableBillVersions,
		TableBills,
		TableMotions,
		TableVoteSummaries,
		TableVotes,
	}
}

// RowSource yields the decoded rows of a table in file order.
type RowSource interface {
	Rows(ctx context.Context, table Table) iter.Seq2[record.Row, error]
}

// House codes.
const (
	HouseAssembly = "A"
	HouseSenate   = "S"
)

// Legislator is one entry of the legislators document.
type Legislator struct {
	District    string  `json:"district"`
	Party       *string `json:"party"`
	DisplayName string  `json:"displayName"`
}

// Members maps author name to legislator, in district order.
type Members = orderedmap.OrderedMap[string, Legislator]

// Roster is the legislators document, one member map per house.
type Roster struct {
	Assembly *Members `json:"A"`
	Senate   *Members `json:"S"`
}

// NewRoster returns a roster with both houses present and empty.
func NewRoster() *Roster {
	return &Roster{
		Assembly: orderedmap.New[string, Legislator](),
		Senate:   orderedmap.New[string, Legislator](),
	}
}

// House returns the member map for a house code, or nil for an unknown code.
func (r *Roster) House(code string) *Members {
	switch code {
	case HouseAssembly:
		return r.Assembly
	case HouseSenate:
		return r.Senate
	default:
		return nil
	}
}

// Len returns the number of legislators across both houses.
func (r *Roster) Len() int {
	return r.Assembly.Len() + r.Senate.Len()
}

// Bill is one entry of the bills document.
type Bill struct {
	Measure  string  `json:"measure"`
	Subject  *string `json:"subject"`
	Location *string `json:"location"`
	Status   *string `json:"status"`
}

// Bills maps bill id to bill, in measure order.
type Bills = orderedmap.OrderedMap[string, Bill]

// NewBills returns an empty bills document.
func NewBills() *Bills {
	return orderedmap.New[string, Bill]()
}

// Vote is one recorded vote of a legislator on a motion.
type Vote struct {
	Timestamp int64   `json:"timestamp"`
	Vote      *string `json:"vote"`
	Motion    *string `json:"motion"`
	Result    string  `json:"result"`
}

// History maps bill id to votes, most recent bill and motion first.
type History = orderedmap.OrderedMap[string, []Vote]

// NewHistory returns an empty vote history.
func NewHistory() *History {
	return orderedmap.New[string, []Vote]()
}

// Histories maps author name to vote history, in roster order.
type Histories = orderedmap.OrderedMap[string, *History]

// NewHistories returns an empty set of histories.
func NewHistories() *Histories {
	return orderedmap.New[string, *History]()
}

// Manifest describes a completed run.
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Legislators int       `json:"legislators"`
	Bills       int       `json:"bills"`
	Authors     int       `json:"authors"`
	Votes       int       `json:"votes"`
}
