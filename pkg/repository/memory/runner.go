package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

type runnerRepo struct {
	s *Store
}

var _ api.RunnerRepository = (*runnerRepo)(nil)

func cloneRunner(r model.Runner) *model.Runner {
	r.RecordedTime = clonePtr(r.RecordedTime)
	r.Notes = clonePtr(r.Notes)
	return &r
}

func (t *tables) runnerExists(raceID, number int) bool {
	for _, item := range t.runners {
		if item.RaceID == raceID && item.Number == number {
			return true
		}
	}
	return false
}

func (r *runnerRepo) Create(ctx context.Context, runner *model.Runner) (id int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		if t.runnerExists(runner.RaceID, runner.Number) {
			return fmt.Errorf("runner %d in race %d: %w",
				runner.Number, runner.RaceID, api.ErrDuplicate)
		}
		item := cloneRunner(*runner)
		item.ID = t.nextID("runner")
		t.runners[item.ID] = *item
		id = item.ID
		return nil
	})
	return id, err
}

// CreateBulk inserts all runners or none of them.
func (r *runnerRepo) CreateBulk(ctx context.Context, runners []*model.Runner) error {
	return r.s.write(ctx, func(t *tables) error {
		seen := map[[2]int]struct{}{}
		for _, runner := range runners {
			key := [2]int{runner.RaceID, runner.Number}
			if _, ok := seen[key]; ok || t.runnerExists(runner.RaceID, runner.Number) {
				return fmt.Errorf("runner %d in race %d: %w",
					runner.Number, runner.RaceID, api.ErrDuplicate)
			}
			seen[key] = struct{}{}
		}
		for _, runner := range runners {
			item := cloneRunner(*runner)
			item.ID = t.nextID("runner")
			t.runners[item.ID] = *item
		}
		return nil
	})
}

func (r *runnerRepo) LoadByID(ctx context.Context, id int) (ret *model.Runner, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		item, ok := t.runners[id]
		if !ok {
			return api.ErrNoRows
		}
		ret = cloneRunner(item)
		return nil
	})
	return ret, err
}

//nolint:whitespace // editor/linter issue
func (r *runnerRepo) LoadByRaceID(ctx context.Context, raceID int) (
	ret []*model.Runner, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		ret = []*model.Runner{}
		for _, item := range t.runners {
			if item.RaceID == raceID {
				ret = append(ret, cloneRunner(item))
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b *model.Runner) int { return a.Number - b.Number })
	return ret, err
}

//nolint:whitespace // editor/linter issue
func (r *runnerRepo) LoadByRaceAndNumber(ctx context.Context, raceID, number int) (
	ret *model.Runner, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		for _, item := range t.runners {
			if item.RaceID == raceID && item.Number == number {
				ret = cloneRunner(item)
				return nil
			}
		}
		return api.ErrNoRows
	})
	return ret, err
}

//nolint:whitespace // editor/linter issue
func (r *runnerRepo) Update(ctx context.Context, id int, setter model.RunnerSetter) (
	n int, err error,
) {
	err = r.s.write(ctx, func(t *tables) error {
		item, ok := t.runners[id]
		if !ok {
			return nil
		}
		setter.Apply(&item)
		t.runners[id] = item
		n = 1
		return nil
	})
	return n, err
}

func (r *runnerRepo) DeleteByRaceID(ctx context.Context, raceID int) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = deleteWhere(t.runners, func(v model.Runner) bool { return v.RaceID == raceID })
		return nil
	})
	return n, err
}

func (r *runnerRepo) DeleteAll(ctx context.Context) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = len(t.runners)
		clear(t.runners)
		return nil
	})
	return n, err
}

func (r *runnerRepo) Count(ctx context.Context) (n int, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		n = len(t.runners)
		return nil
	})
	return n, err
}
