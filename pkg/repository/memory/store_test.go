//nolint:dupl,funlen,errcheck //ok for this test code
package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

var (
	t0      = time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func sampleRace(name string, created time.Time) *model.Race {
	return &model.Race{
		RaceConfig: model.RaceConfig{
			Name: name, Date: "2024-05-01", StartTime: "07:00",
			MinRunner: 1, MaxRunner: 3,
			RunnerRanges: []model.RunnerRange{{Min: 1, Max: 3}},
		},
		CreatedAt: created,
	}
}

func TestRaceRepo(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(func() time.Time { return t0 }))

	id1, err := s.Race().Create(ctx, sampleRace("A", t0.Add(-48*time.Hour)))
	require.NoError(t, err)
	id2, err := s.Race().Create(ctx, sampleRace("B", time.Time{}))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := s.Race().LoadByID(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, t0, got.CreatedAt, "clock used for zero CreatedAt")

	all, err := s.Race().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Name, "newest first")

	latest, err := s.Race().LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id2, latest.ID)

	byKey, err := s.Race().LoadByNameAndDate(ctx, "A", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, id1, byKey.ID)
	_, err = s.Race().LoadByNameAndDate(ctx, "A", "2024-05-02")
	assert.ErrorIs(t, err, api.ErrNoRows)

	old, err := s.Race().LoadCreatedBefore(ctx, t0.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, id1, old[0].ID)

	// returned values are copies
	got.RunnerRanges[0].Max = 99
	again, _ := s.Race().LoadByID(ctx, id2)
	assert.Equal(t, 3, again.RunnerRanges[0].Max)

	n, err := s.Race().DeleteByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.Race().LoadByID(ctx, id1)
	assert.ErrorIs(t, err, api.ErrNoRows)
}

func TestRunnerRepo(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.Runner().CreateBulk(ctx, []*model.Runner{
		model.NewRunner(1, 3), model.NewRunner(1, 1), model.NewRunner(2, 1),
	})
	require.NoError(t, err)

	_, err = s.Runner().Create(ctx, model.NewRunner(1, 3))
	assert.ErrorIs(t, err, api.ErrDuplicate)

	err = s.Runner().CreateBulk(ctx, []*model.Runner{
		model.NewRunner(1, 7), model.NewRunner(1, 7),
	})
	assert.ErrorIs(t, err, api.ErrDuplicate)
	cnt, _ := s.Runner().Count(ctx)
	assert.Equal(t, 3, cnt, "failed bulk insert must not leave rows")

	res, err := s.Runner().LoadByRaceID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 1, res[0].Number)
	assert.Equal(t, 3, res[1].Number)

	r, err := s.Runner().LoadByRaceAndNumber(ctx, 1, 3)
	require.NoError(t, err)
	n, err := s.Runner().Update(ctx, r.ID, model.RunnerSetter{
		Status:       omit.From(model.StatusPassed),
		RecordedTime: omitnull.From(t0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	r, _ = s.Runner().LoadByID(ctx, r.ID)
	assert.Equal(t, model.StatusPassed, r.Status)
	assert.Equal(t, t0, *r.RecordedTime)

	n, _ = s.Runner().Update(ctx, 999, model.RunnerSetter{})
	assert.Equal(t, 0, n)

	n, err = s.Runner().DeleteByRaceID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.Runner().LoadByRaceAndNumber(ctx, 1, 3)
	assert.ErrorIs(t, err, api.ErrNoRows)
}

func TestCheckpointRepo(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Checkpoint().CreateBulk(ctx, []*model.Checkpoint{
		{RaceID: 1, Number: 2, Name: "Summit"},
		{RaceID: 1, Number: 1, Name: "Creek"},
	}))
	err := s.Checkpoint().CreateBulk(ctx, []*model.Checkpoint{
		{RaceID: 1, Number: 3, Name: "Ridge"},
		{RaceID: 1, Number: 1, Name: "Again"},
	})
	assert.ErrorIs(t, err, api.ErrDuplicate)

	res, err := s.Checkpoint().LoadByRaceID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Creek", res[0].Name)
	assert.Equal(t, "Summit", res[1].Name)
}

func TestShadowRepo(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := model.ShadowKey{RaceID: 1, CheckpointNumber: 1, Number: 5}
	id, err := s.CheckpointRunner().Create(ctx, model.NewCheckpointRunner(key))
	require.NoError(t, err)
	_, err = s.CheckpointRunner().Create(ctx, model.NewCheckpointRunner(key))
	assert.ErrorIs(t, err, api.ErrDuplicate)

	// same key in the other table is independent
	_, err = s.BaseStationRunner().Create(ctx, model.NewBaseStationRunner(key))
	require.NoError(t, err)

	_, err = s.CheckpointRunner().Update(ctx, id, model.CheckpointRunnerSetter{
		Notes: omitnull.From("fell"),
	})
	require.NoError(t, err)
	got, err := s.CheckpointRunner().LoadByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "fell", *got.Notes)

	_, err = s.CheckpointRunner().LoadByKey(ctx, model.ShadowKey{RaceID: 1, Number: 5})
	assert.ErrorIs(t, err, api.ErrNoRows)

	require.NoError(t, s.CheckpointRunner().CreateBulk(ctx, []*model.CheckpointRunner{
		model.NewCheckpointRunner(model.ShadowKey{RaceID: 1, CheckpointNumber: 2, Number: 1}),
		model.NewCheckpointRunner(model.ShadowKey{RaceID: 1, CheckpointNumber: 1, Number: 2}),
	}))
	byCP, err := s.CheckpointRunner().LoadByCheckpoint(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, byCP, 2)
	assert.Equal(t, 2, byCP[0].Number)
	assert.Equal(t, 5, byCP[1].Number)

	all, err := s.CheckpointRunner().LoadByRaceID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.Race().Create(ctx, sampleRace("A", t0))
	s.Runner().Create(ctx, model.NewRunner(id, 1))

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Runner().DeleteByRaceID(ctx, id); err != nil {
			return err
		}
		// inside the transaction the delete is visible
		cnt, _ := s.Runner().Count(ctx)
		assert.Equal(t, 0, cnt)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	cnt, _ := s.Runner().Count(ctx)
	assert.Equal(t, 1, cnt, "rolled back")

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		return s.RunInTx(ctx, func(ctx context.Context) error {
			_, err := s.Race().DeleteByID(ctx, id)
			return err
		})
	})
	require.NoError(t, err)
	cnt, _ = s.Race().Count(ctx)
	assert.Equal(t, 0, cnt)
}

func TestSettingRepo(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Setting().Load(ctx, "theme")
	assert.ErrorIs(t, err, api.ErrNoRows)
	require.NoError(t, s.Setting().Save(ctx, "theme", []byte(`"dark"`)))
	require.NoError(t, s.Setting().Save(ctx, "theme", []byte(`"light"`)))
	got, err := s.Setting().Load(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, `"light"`, string(got.Value))
	cnt, _ := s.Setting().Count(ctx)
	assert.Equal(t, 1, cnt)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Race().LoadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
