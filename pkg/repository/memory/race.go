package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

type raceRepo struct {
	s *Store
}

var _ api.RaceRepository = (*raceRepo)(nil)

func cloneRace(r model.Race) *model.Race {
	r.RunnerRanges = slices.Clone(r.RunnerRanges)
	for i := range r.RunnerRanges {
		r.RunnerRanges[i].IndividualNumbers = slices.Clone(
			r.RunnerRanges[i].IndividualNumbers)
	}
	r.Checkpoints = slices.Clone(r.Checkpoints)
	r.Metadata = maps.Clone(r.Metadata)
	return &r
}

func (r *raceRepo) Create(ctx context.Context, race *model.Race) (id int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		item := cloneRace(*race)
		item.ID = t.nextID("race")
		if item.CreatedAt.IsZero() {
			item.CreatedAt = r.s.clock()
		}
		t.races[item.ID] = *item
		id = item.ID
		return nil
	})
	return id, err
}

func (r *raceRepo) LoadByID(ctx context.Context, id int) (ret *model.Race, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		item, ok := t.races[id]
		if !ok {
			return api.ErrNoRows
		}
		ret = cloneRace(item)
		return nil
	})
	return ret, err
}

func (r *raceRepo) LoadAll(ctx context.Context) ([]*model.Race, error) {
	return r.collect(ctx, func(model.Race) bool { return true })
}

//nolint:whitespace // editor/linter issue
func (r *raceRepo) LoadByNameAndDate(ctx context.Context, name, date string) (
	*model.Race, error,
) {
	res, err := r.collect(ctx, func(item model.Race) bool {
		return item.Name == name && item.Date == date
	})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, api.ErrNoRows
	}
	// oldest match, same as the postgres implementation
	return res[len(res)-1], nil
}

//nolint:whitespace // editor/linter issue
func (r *raceRepo) LoadCreatedBefore(ctx context.Context, cutoff time.Time) (
	[]*model.Race, error,
) {
	return r.collect(ctx, func(item model.Race) bool {
		return item.CreatedAt.Before(cutoff)
	})
}

func (r *raceRepo) LoadLatest(ctx context.Context) (*model.Race, error) {
	res, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, api.ErrNoRows
	}
	return res[0], nil
}

func (r *raceRepo) DeleteByID(ctx context.Context, id int) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		if _, ok := t.races[id]; ok {
			delete(t.races, id)
			n = 1
		}
		return nil
	})
	return n, err
}

func (r *raceRepo) DeleteAll(ctx context.Context) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = len(t.races)
		clear(t.races)
		return nil
	})
	return n, err
}

func (r *raceRepo) Count(ctx context.Context) (n int, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		n = len(t.races)
		return nil
	})
	return n, err
}

// collect returns matching races newest first
//
//nolint:whitespace // editor/linter issue
func (r *raceRepo) collect(ctx context.Context, pred func(model.Race) bool) (
	ret []*model.Race, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		ret = make([]*model.Race, 0, len(t.races))
		for _, item := range t.races {
			if pred(item) {
				ret = append(ret, cloneRace(item))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load races: %w", err)
	}
	slices.SortFunc(ret, func(a, b *model.Race) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return b.ID - a.ID
	})
	return ret, nil
}
