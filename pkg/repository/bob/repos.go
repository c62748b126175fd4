package bob

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/checkpoint"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/race"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/runner"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/setting"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/shadow"
)

type bobRepositories struct {
	raceRepository              api.RaceRepository
	runnerRepository            api.RunnerRepository
	checkpointRepository        api.CheckpointRepository
	checkpointRunnerRepository  api.CheckpointRunnerRepository
	baseStationRunnerRepository api.BaseStationRunnerRepository
	settingRepository           api.SettingRepository
}

var _ api.Repositories = (*bobRepositories)(nil)

func NewRepositoriesFromPool(pool *pgxpool.Pool) api.Repositories {
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	return NewRepositories(db)
}

func NewRepositories(db bob.DB) api.Repositories {
	return &bobRepositories{
		raceRepository:              race.NewRaceRepository(db),
		runnerRepository:            runner.NewRunnerRepository(db),
		checkpointRepository:        checkpoint.NewCheckpointRepository(db),
		checkpointRunnerRepository:  shadow.NewCheckpointRunnerRepository(db),
		baseStationRunnerRepository: shadow.NewBaseStationRunnerRepository(db),
		settingRepository:           setting.NewSettingRepository(db),
	}
}

func (r *bobRepositories) Race() api.RaceRepository {
	return r.raceRepository
}

func (r *bobRepositories) Runner() api.RunnerRepository {
	return r.runnerRepository
}

func (r *bobRepositories) Checkpoint() api.CheckpointRepository {
	return r.checkpointRepository
}

func (r *bobRepositories) CheckpointRunner() api.CheckpointRunnerRepository {
	return r.checkpointRunnerRepository
}

func (r *bobRepositories) BaseStationRunner() api.BaseStationRunnerRepository {
	return r.baseStationRunnerRepository
}

func (r *bobRepositories) Setting() api.SettingRepository {
	return r.settingRepository
}
