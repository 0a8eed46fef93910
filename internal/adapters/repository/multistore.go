package repository

import (
	"context"
	"errors"

	"github.com/okian/pubinfo/internal/domain/model"
)

// MultiStore writes every document to each of its stores in order and
// stops at the first failure.
type MultiStore struct {
	stores []Store
}

// NewMultiStore fans writes out to stores.
func NewMultiStore(stores ...Store) *MultiStore {
	return &MultiStore{stores: stores}
}

func (m *MultiStore) PutLegislators(ctx context.Context, roster *model.Roster) error {
	return m.each(func(s Store) error { return s.PutLegislators(ctx, roster) })
}

func (m *MultiStore) PutBills(ctx context.Context, bills *model.Bills) error {
	return m.each(func(s Store) error { return s.PutBills(ctx, bills) })
}

func (m *MultiStore) PutVotes(ctx context.Context, author string, history *model.History) error {
	return m.each(func(s Store) error { return s.PutVotes(ctx, author, history) })
}

func (m *MultiStore) PutManifest(ctx context.Context, manifest model.Manifest) error {
	return m.each(func(s Store) error { return s.PutManifest(ctx, manifest) })
}

// Close closes every store and joins their errors.
func (m *MultiStore) Close() error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiStore) each(fn func(Store) error) error {
	for _, s := range m.stores {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}
