package setting

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/testsupport/testdb"
)

func TestSaveAndLoad(t *testing.T) {
	pool := testdb.InitTestDB()
	r := NewSettingRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
	ctx := context.Background()

	_, err := r.Load(ctx, "currentRaceId")
	assert.Assert(t, errors.Is(err, api.ErrNoRows))

	assert.NilError(t, r.Save(ctx, "currentRaceId", []byte("1")))
	assert.NilError(t, r.Save(ctx, "currentRaceId", []byte("2")))

	got, err := r.Load(ctx, "currentRaceId")
	assert.NilError(t, err)
	assert.Equal(t, string(got.Value), "2")

	c, err := r.Count(ctx)
	assert.NilError(t, err)
	assert.Equal(t, c, 1)
}

func TestSaveInvalidJSON(t *testing.T) {
	pool := testdb.InitTestDB()
	r := NewSettingRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
	err := r.Save(context.Background(), "broken", []byte("{not json"))
	assert.Assert(t, err != nil)
}
