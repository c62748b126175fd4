package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

// shadowRepo serves both per station tables.
type shadowRepo[R any, S api.Patchable[R]] struct {
	s     *Store
	name  string
	table func(t *tables) map[int]R
	key   func(row *R) model.ShadowKey
	setID func(row *R, id int)
	clone func(row R) *R
}

type (
	cpRunnerRepo = shadowRepo[model.CheckpointRunner, model.CheckpointRunnerSetter]
	bsRunnerRepo = shadowRepo[model.BaseStationRunner, model.BaseStationRunnerSetter]
)

var (
	_ api.CheckpointRunnerRepository  = (*cpRunnerRepo)(nil)
	_ api.BaseStationRunnerRepository = (*bsRunnerRepo)(nil)
)

func newCPRunnerRepo(s *Store) *cpRunnerRepo {
	return &cpRunnerRepo{
		s:     s,
		name:  "checkpoint_runner",
		table: func(t *tables) map[int]model.CheckpointRunner { return t.cpRunners },
		key: func(r *model.CheckpointRunner) model.ShadowKey {
			return model.ShadowKey{
				RaceID: r.RaceID, CheckpointNumber: r.CheckpointNumber, Number: r.Number,
			}
		},
		setID: func(r *model.CheckpointRunner, id int) { r.ID = id },
		clone: func(r model.CheckpointRunner) *model.CheckpointRunner {
			r.CallInTime = clonePtr(r.CallInTime)
			r.MarkOffTime = clonePtr(r.MarkOffTime)
			r.Notes = clonePtr(r.Notes)
			return &r
		},
	}
}

func newBSRunnerRepo(s *Store) *bsRunnerRepo {
	return &bsRunnerRepo{
		s:     s,
		name:  "base_station_runner",
		table: func(t *tables) map[int]model.BaseStationRunner { return t.bsRunners },
		key: func(r *model.BaseStationRunner) model.ShadowKey {
			return model.ShadowKey{
				RaceID: r.RaceID, CheckpointNumber: r.CheckpointNumber, Number: r.Number,
			}
		},
		setID: func(r *model.BaseStationRunner, id int) { r.ID = id },
		clone: func(r model.BaseStationRunner) *model.BaseStationRunner {
			r.CommonTime = clonePtr(r.CommonTime)
			r.Notes = clonePtr(r.Notes)
			return &r
		},
	}
}

func (r *shadowRepo[R, S]) find(t *tables, key model.ShadowKey) (int, bool) {
	for id, item := range r.table(t) {
		if r.key(&item) == key {
			return id, true
		}
	}
	return 0, false
}

func (r *shadowRepo[R, S]) insert(t *tables, row *R) (int, error) {
	key := r.key(row)
	if _, ok := r.find(t, key); ok {
		return 0, fmt.Errorf("%s %+v: %w", r.name, key, api.ErrDuplicate)
	}
	item := r.clone(*row)
	id := t.nextID(r.name)
	r.setID(item, id)
	r.table(t)[id] = *item
	return id, nil
}

func (r *shadowRepo[R, S]) Create(ctx context.Context, row *R) (id int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		id, err = r.insert(t, row)
		return err
	})
	return id, err
}

// CreateBulk inserts all rows or none of them.
func (r *shadowRepo[R, S]) CreateBulk(ctx context.Context, rows []*R) error {
	return r.s.write(ctx, func(t *tables) error {
		seen := map[model.ShadowKey]struct{}{}
		for _, row := range rows {
			key := r.key(row)
			_, dup := seen[key]
			if _, ok := r.find(t, key); ok || dup {
				return fmt.Errorf("%s %+v: %w", r.name, key, api.ErrDuplicate)
			}
			seen[key] = struct{}{}
		}
		for _, row := range rows {
			if _, err := r.insert(t, row); err != nil {
				return err
			}
		}
		return nil
	})
}

//nolint:whitespace // editor/linter issue
func (r *shadowRepo[R, S]) LoadByKey(ctx context.Context, key model.ShadowKey) (
	ret *R, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		id, ok := r.find(t, key)
		if !ok {
			return api.ErrNoRows
		}
		ret = r.clone(r.table(t)[id])
		return nil
	})
	return ret, err
}

func (r *shadowRepo[R, S]) Update(ctx context.Context, id int, setter S) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		item, ok := r.table(t)[id]
		if !ok {
			return nil
		}
		setter.Apply(&item)
		r.table(t)[id] = item
		n = 1
		return nil
	})
	return n, err
}

func (r *shadowRepo[R, S]) LoadByRaceID(ctx context.Context, raceID int) ([]*R, error) {
	return r.collect(ctx, func(k model.ShadowKey) bool { return k.RaceID == raceID })
}

//nolint:whitespace // editor/linter issue
func (r *shadowRepo[R, S]) LoadByCheckpoint(
	ctx context.Context,
	raceID, checkpointNumber int,
) ([]*R, error) {
	return r.collect(ctx, func(k model.ShadowKey) bool {
		return k.RaceID == raceID && k.CheckpointNumber == checkpointNumber
	})
}

func (r *shadowRepo[R, S]) DeleteByRaceID(ctx context.Context, raceID int) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = deleteWhere(r.table(t), func(v R) bool { return r.key(&v).RaceID == raceID })
		return nil
	})
	return n, err
}

func (r *shadowRepo[R, S]) DeleteAll(ctx context.Context) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = len(r.table(t))
		clear(r.table(t))
		return nil
	})
	return n, err
}

func (r *shadowRepo[R, S]) Count(ctx context.Context) (n int, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		n = len(r.table(t))
		return nil
	})
	return n, err
}

// collect returns the matching rows ordered by checkpoint and number
//
//nolint:whitespace // editor/linter issue
func (r *shadowRepo[R, S]) collect(ctx context.Context, pred func(model.ShadowKey) bool) (
	ret []*R, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		ret = []*R{}
		for _, item := range r.table(t) {
			if pred(r.key(&item)) {
				ret = append(ret, r.clone(item))
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b *R) int {
		ka, kb := r.key(a), r.key(b)
		if ka.CheckpointNumber != kb.CheckpointNumber {
			return ka.CheckpointNumber - kb.CheckpointNumber
		}
		return ka.Number - kb.Number
	})
	return ret, err
}
