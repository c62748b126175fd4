package api

import (
	"context"
	"errors"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

// Patchable is implemented by the setters of the shadow tables.
type Patchable[R any] interface {
	Apply(row *R)
	IsEmpty() bool
}

// Upsert loads the row identified by key and applies setter to it.
// If no such row exists, a row created by defaults is patched and inserted.
// Returns the id of the affected row.
//
//nolint:whitespace // can't make both editor and linter happy
func Upsert[R any, S Patchable[R]](
	ctx context.Context,
	store ShadowStore[R, S],
	key model.ShadowKey,
	defaults func(key model.ShadowKey) *R,
	setter S,
	idOf func(row *R) int,
) (int, error) {
	existing, err := store.LoadByKey(ctx, key)
	switch {
	case err == nil:
		if setter.IsEmpty() {
			return idOf(existing), nil
		}
		if _, err := store.Update(ctx, idOf(existing), setter); err != nil {
			return 0, err
		}
		return idOf(existing), nil
	case errors.Is(err, ErrNoRows):
		row := defaults(key)
		setter.Apply(row)
		return store.Create(ctx, row)
	default:
		return 0, err
	}
}
