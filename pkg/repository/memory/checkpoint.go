package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

type checkpointRepo struct {
	s *Store
}

var _ api.CheckpointRepository = (*checkpointRepo)(nil)

func (t *tables) checkpointExists(raceID, number int) bool {
	for _, item := range t.checkpoints {
		if item.RaceID == raceID && item.Number == number {
			return true
		}
	}
	return false
}

func (t *tables) insertCheckpoint(cp model.Checkpoint) (int, error) {
	if t.checkpointExists(cp.RaceID, cp.Number) {
		return 0, fmt.Errorf("checkpoint %d in race %d: %w",
			cp.Number, cp.RaceID, api.ErrDuplicate)
	}
	cp.ID = t.nextID("checkpoint")
	t.checkpoints[cp.ID] = cp
	return cp.ID, nil
}

//nolint:whitespace // editor/linter issue
func (r *checkpointRepo) Create(ctx context.Context, cp *model.Checkpoint) (
	id int, err error,
) {
	err = r.s.write(ctx, func(t *tables) error {
		id, err = t.insertCheckpoint(*cp)
		return err
	})
	return id, err
}

//nolint:whitespace // editor/linter issue
func (r *checkpointRepo) CreateBulk(ctx context.Context, cps []*model.Checkpoint) error {
	return r.s.write(ctx, func(t *tables) error {
		work := t.clone()
		for _, cp := range cps {
			if _, err := work.insertCheckpoint(*cp); err != nil {
				return err
			}
		}
		t.checkpoints = work.checkpoints
		t.seq = work.seq
		return nil
	})
}

//nolint:whitespace // editor/linter issue
func (r *checkpointRepo) LoadByRaceID(ctx context.Context, raceID int) (
	ret []*model.Checkpoint, err error,
) {
	err = r.s.read(ctx, func(t *tables) error {
		ret = []*model.Checkpoint{}
		for _, item := range t.checkpoints {
			if item.RaceID == raceID {
				ret = append(ret, &item)
			}
		}
		return nil
	})
	slices.SortFunc(ret, func(a, b *model.Checkpoint) int { return a.Number - b.Number })
	return ret, err
}

//nolint:whitespace // editor/linter issue
func (r *checkpointRepo) DeleteByRaceID(ctx context.Context, raceID int) (
	n int, err error,
) {
	err = r.s.write(ctx, func(t *tables) error {
		n = deleteWhere(t.checkpoints,
			func(v model.Checkpoint) bool { return v.RaceID == raceID })
		return nil
	})
	return n, err
}

func (r *checkpointRepo) DeleteAll(ctx context.Context) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = len(t.checkpoints)
		clear(t.checkpoints)
		return nil
	})
	return n, err
}

func (r *checkpointRepo) Count(ctx context.Context) (n int, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		n = len(t.checkpoints)
		return nil
	})
	return n, err
}
