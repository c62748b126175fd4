package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/memory"
)

func cpID(r *model.CheckpointRunner) int { return r.ID }

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	key := model.ShadowKey{RaceID: 1, CheckpointNumber: 2, Number: 42}
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	// miss inserts defaults plus patch
	id, err := api.Upsert[model.CheckpointRunner, model.CheckpointRunnerSetter](
		ctx, s.CheckpointRunner(), key, model.NewCheckpointRunner,
		model.CheckpointRunnerSetter{MarkOffTime: omitnull.From(ts)}, cpID)
	require.NoError(t, err)
	got, err := s.CheckpointRunner().LoadByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, model.StatusNotStarted, got.Status)
	assert.Equal(t, ts, *got.MarkOffTime)

	// hit updates only the given fields
	id2, err := api.Upsert[model.CheckpointRunner, model.CheckpointRunnerSetter](
		ctx, s.CheckpointRunner(), key, model.NewCheckpointRunner,
		model.CheckpointRunnerSetter{Status: omit.From(model.StatusPassed)}, cpID)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	got, _ = s.CheckpointRunner().LoadByKey(ctx, key)
	assert.Equal(t, model.StatusPassed, got.Status)
	assert.Equal(t, ts, *got.MarkOffTime)

	cnt, _ := s.CheckpointRunner().Count(ctx)
	assert.Equal(t, 1, cnt)
}
