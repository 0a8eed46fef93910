// Package repository persists the assembled documents.
package repository

import (
	"context"

	"github.com/okian/pubinfo/internal/domain/model"
)

// Document kinds, used as metric labels and as the postgres kind column.
const (
	KindLegislators = "legislators"
	KindBills       = "bills"
	KindVotes       = "votes"
	KindManifest    = "manifest"
)

// Store writes the documents of one run. Writes to distinct documents are
// independent; no ordering between them is assumed.
type Store interface {
	PutLegislators(ctx context.Context, roster *model.Roster) error
	PutBills(ctx context.Context, bills *model.Bills) error
	// PutVotes writes the vote history of one author.
	PutVotes(ctx context.Context, author string, history *model.History) error
	// PutManifest is written last and marks the run complete.
	PutManifest(ctx context.Context, manifest model.Manifest) error
	Close() error
}
