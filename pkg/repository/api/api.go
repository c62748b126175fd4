package api

import (
	"context"
	"errors"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

var (
	ErrNoRows    = errors.New("no rows in result set")
	ErrDuplicate = errors.New("duplicate key")
)

type Repositories interface {
	Race() RaceRepository
	Runner() RunnerRepository
	Checkpoint() CheckpointRepository
	CheckpointRunner() CheckpointRunnerRepository
	BaseStationRunner() BaseStationRunnerRepository
	Setting() SettingRepository
}

type RaceRepository interface {
	Create(ctx context.Context, race *model.Race) (int, error)
	LoadByID(ctx context.Context, id int) (*model.Race, error)
	// newest first
	LoadAll(ctx context.Context) ([]*model.Race, error)
	LoadByNameAndDate(ctx context.Context, name, date string) (*model.Race, error)
	LoadCreatedBefore(ctx context.Context, cutoff time.Time) ([]*model.Race, error)
	LoadLatest(ctx context.Context) (*model.Race, error)
	DeleteByID(ctx context.Context, id int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type RunnerRepository interface {
	Create(ctx context.Context, runner *model.Runner) (int, error)
	CreateBulk(ctx context.Context, runners []*model.Runner) error
	LoadByID(ctx context.Context, id int) (*model.Runner, error)
	// ordered by number
	LoadByRaceID(ctx context.Context, raceID int) ([]*model.Runner, error)
	LoadByRaceAndNumber(ctx context.Context, raceID, number int) (*model.Runner, error)
	Update(ctx context.Context, id int, setter model.RunnerSetter) (int, error)
	DeleteByRaceID(ctx context.Context, raceID int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type CheckpointRepository interface {
	Create(ctx context.Context, cp *model.Checkpoint) (int, error)
	CreateBulk(ctx context.Context, cps []*model.Checkpoint) error
	// ordered by number
	LoadByRaceID(ctx context.Context, raceID int) ([]*model.Checkpoint, error)
	DeleteByRaceID(ctx context.Context, raceID int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// ShadowStore is the common part of the per station shadow tables.
// R is the row type, S the matching setter.
type ShadowStore[R, S any] interface {
	Create(ctx context.Context, row *R) (int, error)
	CreateBulk(ctx context.Context, rows []*R) error
	LoadByKey(ctx context.Context, key model.ShadowKey) (*R, error)
	Update(ctx context.Context, id int, setter S) (int, error)
}

type CheckpointRunnerRepository interface {
	ShadowStore[model.CheckpointRunner, model.CheckpointRunnerSetter]
	LoadByRaceID(ctx context.Context, raceID int) ([]*model.CheckpointRunner, error)
	// ordered by number
	LoadByCheckpoint(
		ctx context.Context,
		raceID, checkpointNumber int,
	) ([]*model.CheckpointRunner, error)
	DeleteByRaceID(ctx context.Context, raceID int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type BaseStationRunnerRepository interface {
	ShadowStore[model.BaseStationRunner, model.BaseStationRunnerSetter]
	LoadByRaceID(ctx context.Context, raceID int) ([]*model.BaseStationRunner, error)
	// ordered by number
	LoadByCheckpoint(
		ctx context.Context,
		raceID, checkpointNumber int,
	) ([]*model.BaseStationRunner, error)
	DeleteByRaceID(ctx context.Context, raceID int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type SettingRepository interface {
	Load(ctx context.Context, key string) (*model.Setting, error)
	Save(ctx context.Context, key string, value []byte) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
