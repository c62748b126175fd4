package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetracker-store/pkg/config"
	"github.com/mpapenbr/racetracker-store/testsupport/basedata"
)

func TestMemoryEnv(t *testing.T) {
	config.Store = config.StoreMemory
	config.LogLevel = "error"
	t.Cleanup(func() { config.Store = config.StorePostgres })

	ctx := context.Background()
	env, err := NewEnv(ctx)
	require.NoError(t, err)
	defer env.Close()

	_, err = env.ResolveRaceID(ctx, 0)
	assert.ErrorIs(t, err, ErrNoRace)

	id, err := env.Races.SaveRace(ctx, basedata.SampleRaceConfig())
	require.NoError(t, err)

	got, err := env.ResolveRaceID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = env.ResolveRaceID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestLocation(t *testing.T) {
	t.Cleanup(func() { config.Location = "" })

	config.Location = ""
	assert.Equal(t, "Local", Location().String())

	config.Location = "UTC"
	assert.Equal(t, "UTC", Location().String())

	config.Location = "Nowhere/Invalid"
	assert.Equal(t, "Local", Location().String())
}
