package storage

import (
	"context"
	"errors"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// Fanout forwards a save to several stores, typically the primary backend
// plus a CSV export. Every store is attempted even when an earlier one
// fails; the errors are joined.
type Fanout struct {
	stores []ports.ItemStore
}

var _ ports.ItemStore = (*Fanout)(nil)

// NewFanout builds a fanout over the given stores.
func NewFanout(stores ...ports.ItemStore) *Fanout {
	return &Fanout{stores: stores}
}

// Save forwards items and report to every store.
func (f *Fanout) Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error {
	var errs []error
	for _, store := range f.stores {
		if err := store.Save(ctx, items, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
