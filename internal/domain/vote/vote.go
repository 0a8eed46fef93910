// Package vote assembles per-legislator vote histories by joining vote
// events to motion text and vote summary results.
//
// Columns follow bill_detail_vote_tbl.sql, bill_motion_tbl.sql and
// bill_summary_vote_tbl.sql in the pubinfo load archive.
package vote

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
)

// TimeLayout is the vote timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

// ResultEnclosure is trimmed from both ends of a vote summary result.
const ResultEnclosure = "()"

// bill_motion_tbl columns.
const (
	colMotionID   = 0
	colMotionText = 1
)

// bill_summary_vote_tbl columns.
const (
	colSummaryMotionID = 4
	colSummaryResult   = 8
)

// bill_detail_vote_tbl columns.
const (
	colVoteBillID   = 0
	colVoteAuthor   = 2
	colVoteTime     = 3
	colVoteCode     = 5
	colVoteMotionID = 6
)

// event is a vote before its motion id is dropped.
type event struct {
	motionID int
	vote     model.Vote
}

type assembler struct {
	loc *time.Location
}

// Motions maps motion id to motion text. Later rows overwrite earlier rows.
func Motions(ctx context.Context, src model.RowSource) (map[string]*string, error) {
	motions := make(map[string]*string)
	for row, err := range src.Rows(ctx, model.TableMotions) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		id := c.Text(colMotionID)
		text := c.Nullable(colMotionText)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableMotions, err)
		}
		motions[id] = text
	}
	return motions, nil
}

// Results maps motion id to vote result. Later rows overwrite earlier rows.
func Results(ctx context.Context, src model.RowSource) (map[string]string, error) {
	results := make(map[string]string)
	for row, err := range src.Rows(ctx, model.TableVoteSummaries) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		id := c.Text(colSummaryMotionID)
		result := c.Text(colSummaryResult)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableVoteSummaries, err)
		}
		results[id] = strings.Trim(result, ResultEnclosure)
	}
	return results, nil
}

// Assemble builds one history per author, in the order given. Every vote
// must name one of authors.
//
// Motion ids stand in for recency: votes on a bill are ordered by motion id
// descending, and bills by the motion id of their latest vote descending.
func Assemble(ctx context.Context, src model.RowSource, authors []string, opts ...Option) (*model.Histories, error) {
	a := &assembler{loc: time.Local}
	for _, opt := range opts {
		opt(a)
	}

	motions, err := Motions(ctx, src)
	if err != nil {
		return nil, err
	}
	results, err := Results(ctx, src)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]*eventsByBill, len(authors))
	for _, author := range authors {
		if _, ok := pending[author]; !ok {
			pending[author] = newEventsByBill()
		}
	}

	for row, err := range src.Rows(ctx, model.TableVotes) {
		if err != nil {
			return nil, err
		}
		c := record.NewCursor(row)
		billID := c.Text(colVoteBillID)
		author := c.Text(colVoteAuthor)
		at := c.Time(colVoteTime, TimeLayout, a.loc)
		code := c.Nullable(colVoteCode)
		motionKey := c.Text(colVoteMotionID)
		motionID := c.Int(colVoteMotionID)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", model.TableVotes, err)
		}

		motion, ok := motions[motionKey]
		if !ok {
			return nil, missing(row, "motion", motionKey)
		}
		result, ok := results[motionKey]
		if !ok {
			return nil, missing(row, "vote summary", motionKey)
		}
		bills, ok := pending[author]
		if !ok {
			return nil, missing(row, "author", author)
		}
		bills.add(billID, event{
			motionID: motionID,
			vote: model.Vote{
				Timestamp: at.Unix(),
				Vote:      code,
				Motion:    motion,
				Result:    result,
			},
		})
	}

	histories := model.NewHistories()
	for _, author := range authors {
		if _, done := histories.Get(author); done {
			continue
		}
		histories.Set(author, pending[author].history())
	}
	return histories, nil
}

func missing(row record.Row, what, key string) error {
	return fmt.Errorf("%s: line %d: %s %q: %w", model.TableVotes, row.Line, what, key, model.ErrMissingKey)
}

// eventsByBill groups events by bill id, keeping bills in first-seen order.
type eventsByBill struct {
	order  []string
	events map[string][]event
}

func newEventsByBill() *eventsByBill {
	return &eventsByBill{events: make(map[string][]event)}
}

func (b *eventsByBill) add(billID string, e event) {
	if _, ok := b.events[billID]; !ok {
		b.order = append(b.order, billID)
	}
	b.events[billID] = append(b.events[billID], e)
}

// history sorts and strips the grouped events.
func (b *eventsByBill) history() *model.History {
	for _, events := range b.events {
		slices.SortStableFunc(events, func(x, y event) int {
			return cmp.Compare(y.motionID, x.motionID)
		})
	}
	bills := slices.Clone(b.order)
	slices.SortStableFunc(bills, func(x, y string) int {
		return cmp.Compare(b.events[y][0].motionID, b.events[x][0].motionID)
	})

	h := model.NewHistory()
	for _, billID := range bills {
		events := b.events[billID]
		votes := make([]model.Vote, len(events))
		for i, e := range events {
			votes[i] = e.vote
		}
		h.Set(billID, votes)
	}
	return h
}
