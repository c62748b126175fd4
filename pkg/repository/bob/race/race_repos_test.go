//nolint:funlen //ok for this test code
package race

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/testsupport/basedata"
	tcpg "github.com/mpapenbr/racetracker-store/testsupport/tcpostgres"
	"github.com/mpapenbr/racetracker-store/testsupport/testdb"
)

func TestCreateAndLoad(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	r := NewRaceRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, basedata.SampleRace())
	assert.NilError(t, err)
	assert.Assert(t, id > 0)

	got, err := r.LoadByID(ctx, id)
	assert.NilError(t, err)
	want := basedata.SampleRace()
	assert.Equal(t, got.ID, id)
	assert.Equal(t, got.Name, want.Name)
	assert.Equal(t, got.Date, want.Date)
	assert.Equal(t, got.StartTime, want.StartTime)
	assert.DeepEqual(t, got.RunnerRanges, want.RunnerRanges)
	assert.DeepEqual(t, got.Checkpoints, want.Checkpoints)
	assert.Equal(t, got.Metadata["organizer"], "trail club")
	assert.Assert(t, got.CreatedAt.Equal(want.CreatedAt))

	_, err = r.LoadByID(ctx, id+1000)
	assert.Assert(t, errors.Is(err, api.ErrNoRows))
}

func TestLoadOrdering(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	r := NewRaceRepository(db)
	ctx := context.Background()

	base := basedata.TestTime()
	create := func(name string, created time.Time) int {
		race := basedata.SampleRace()
		race.Name = name
		race.CreatedAt = created
		id, err := r.Create(ctx, race)
		assert.NilError(t, err)
		return id
	}
	oldID := create("old", base.Add(-48*time.Hour))
	midID := create("mid", base.Add(-time.Hour))
	newID := create("new", base)

	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 3)
	assert.Equal(t, all[0].ID, newID)
	assert.Equal(t, all[2].ID, oldID)

	latest, err := r.LoadLatest(ctx)
	assert.NilError(t, err)
	assert.Equal(t, latest.ID, newID)

	before, err := r.LoadCreatedBefore(ctx, base.Add(-24*time.Hour))
	assert.NilError(t, err)
	assert.Equal(t, len(before), 1)
	assert.Equal(t, before[0].ID, oldID)

	byName, err := r.LoadByNameAndDate(ctx, "mid", basedata.SampleRace().Date)
	assert.NilError(t, err)
	assert.Equal(t, byName.ID, midID)

	_, err = r.LoadByNameAndDate(ctx, "mid", "1999-01-01")
	assert.Assert(t, errors.Is(err, api.ErrNoRows))
}

func TestDelete(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	r := NewRaceRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func() int
		want    int
	}{
		{
			name:    "existing",
			prepare: func() int { id, _ := r.Create(ctx, basedata.SampleRace()); return id },
			want:    1,
		},
		{
			name:    "missing",
			prepare: func() int { return 4711 },
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tcpg.ClearAllTables(pool)
			id := tt.prepare()
			n, err := r.DeleteByID(ctx, id)
			assert.NilError(t, err)
			assert.Equal(t, n, tt.want)
			c, err := r.Count(ctx)
			assert.NilError(t, err)
			assert.Equal(t, c, 0)
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	r := NewRaceRepository(db)
	ctx := context.Background()

	race := &model.Race{RaceConfig: model.RaceConfig{
		Name: "plain", Date: "2024-05-01", StartTime: "08:00", MinRunner: 1, MaxRunner: 2,
	}}
	id, err := r.Create(ctx, race)
	assert.NilError(t, err)
	got, err := r.LoadByID(ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, len(got.RunnerRanges), 0)
	assert.Equal(t, len(got.Checkpoints), 0)
	assert.Assert(t, !got.CreatedAt.IsZero())
}
