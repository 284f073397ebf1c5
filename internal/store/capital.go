package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pcr-journal/internal/errors"
)

// Capital reads the capital figure stored under KeyCapital.
// ok is false when the key is absent or does not hold a number.
func Capital(ctx context.Context, kv KVStore) (capital decimal.Decimal, ok bool, err error) {
	raw, err := kv.Get(ctx, KeyCapital)
	if errors.Is(err, errors.ErrKeyNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	d, perr := decimal.NewFromString(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if perr != nil {
		return decimal.Zero, false, nil
	}
	return d, true, nil
}

// SetCapital writes the capital figure. The ledger never calls this; it is
// for whoever configures the journal.
func SetCapital(ctx context.Context, kv KVStore, capital decimal.Decimal) error {
	if capital.IsNegative() {
		return errors.NewValidationError("capital", capital.String(), "must not be negative")
	}
	if err := kv.Set(ctx, KeyCapital, []byte(capital.String())); err != nil {
		return fmt.Errorf("saving capital: %w", err)
	}
	return nil
}
