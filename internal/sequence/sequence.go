// Package sequence manages the persisted invoice counter.
package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/router-for-me/InvoiceDrafter/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Store is the subset of the settings store the counter needs.
type Store interface {
	GetRaw(ctx context.Context, key string) (json.RawMessage, bool, error)
	Update(ctx context.Context, fn func(tx settings.Tx) error) error
}

var (
	// ErrExhausted reports a counter that cannot advance further.
	ErrExhausted = errors.New("sequence: counter exhausted")
	// ErrMoved reports that the counter no longer holds the value the caller named its invoice after.
	ErrMoved = errors.New("sequence: counter moved")
)

// Counter reads and advances the invoice sequence.
type Counter struct {
	store Store
}

// NewCounter returns a counter backed by store.
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// Current returns the persisted counter value, or 0 when it was never set.
func (c *Counter) Current(ctx context.Context) (int64, error) {
	raw, found, err := c.store.GetRaw(ctx, settings.InvoiceSequenceKey)
	if err != nil {
		return 0, err
	}
	return decode(raw, found)
}

// Advance persists Current()+1 and returns it. Entries in also are written in the same save, so
// they become durable together with the new counter value or not at all. The read and the write
// happen under one store lock, so concurrent advances never hand out the same value.
func (c *Counter) Advance(ctx context.Context, also ...settings.Entry) (int64, error) {
	return c.advance(ctx, -1, also)
}

// AdvanceFrom is Advance guarded by the value the caller already used: it fails with ErrMoved,
// persisting nothing, when the counter no longer equals expected.
func (c *Counter) AdvanceFrom(ctx context.Context, expected int64, also ...settings.Entry) (int64, error) {
	return c.advance(ctx, expected, also)
}

func (c *Counter) advance(ctx context.Context, expected int64, also []settings.Entry) (int64, error) {
	var next int64
	errUpdate := c.store.Update(ctx, func(tx settings.Tx) error {
		raw, found := tx.GetRaw(settings.InvoiceSequenceKey)
		current, errDecode := decode(raw, found)
		if errDecode != nil {
			return errDecode
		}
		if expected >= 0 && current != expected {
			return fmt.Errorf("%w: expected %d, found %d", ErrMoved, expected, current)
		}
		if current == math.MaxInt64 {
			return ErrExhausted
		}
		next = current + 1

		if errSet := tx.Set(settings.InvoiceSequenceKey, next); errSet != nil {
			return errSet
		}
		for _, entry := range also {
			if errSet := tx.Set(entry.Key, entry.Value); errSet != nil {
				return errSet
			}
		}
		return nil
	})
	if errUpdate != nil {
		log.WithError(errUpdate).WithField("sequence", next).Warn("sequence: advance not persisted")
		return 0, fmt.Errorf("sequence: advance: %w", errUpdate)
	}
	log.WithField("sequence", next).Info("sequence: advanced")
	return next, nil
}

func decode(raw json.RawMessage, found bool) (int64, error) {
	if !found {
		return settings.DefaultInvoiceSequence, nil
	}
	value, ok := settings.DecodeInt(raw)
	if !ok || value < 0 {
		return 0, fmt.Errorf("%w: %s=%s", settings.ErrMalformedValue, settings.InvoiceSequenceKey, string(raw))
	}
	return value, nil
}
