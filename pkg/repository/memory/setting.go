package memory

import (
	"context"
	"slices"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

type settingRepo struct {
	s *Store
}

var _ api.SettingRepository = (*settingRepo)(nil)

func (r *settingRepo) Load(ctx context.Context, key string) (ret *model.Setting, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		v, ok := t.settings[key]
		if !ok {
			return api.ErrNoRows
		}
		ret = &model.Setting{Key: key, Value: slices.Clone(v)}
		return nil
	})
	return ret, err
}

func (r *settingRepo) Save(ctx context.Context, key string, value []byte) error {
	return r.s.write(ctx, func(t *tables) error {
		t.settings[key] = slices.Clone(value)
		return nil
	})
}

func (r *settingRepo) DeleteAll(ctx context.Context) (n int, err error) {
	err = r.s.write(ctx, func(t *tables) error {
		n = len(t.settings)
		clear(t.settings)
		return nil
	})
	return n, err
}

func (r *settingRepo) Count(ctx context.Context) (n int, err error) {
	err = r.s.read(ctx, func(t *tables) error {
		n = len(t.settings)
		return nil
	})
	return n, err
}
