//nolint:whitespace,dupl // can't make both editor and linter happy
package race

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/samber/lo"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

// InitializeCheckpointRunners seeds one not-started row per runner for the
// checkpoint. Runners which already have a row are skipped.
// Returns the number of rows created.
func (s *Service) InitializeCheckpointRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
) (int, error) {
	numbers, err := s.missingNumbers(ctx, raceID, func() ([]int, error) {
		rows, err := s.repos.CheckpointRunner().LoadByCheckpoint(ctx, raceID, checkpointNumber)
		return lo.Map(rows, func(r *model.CheckpointRunner, _ int) int { return r.Number }), err
	})
	if err == nil {
		err = s.repos.CheckpointRunner().CreateBulk(ctx,
			lo.Map(numbers, func(n, _ int) *model.CheckpointRunner {
				return model.NewCheckpointRunner(model.ShadowKey{
					RaceID: raceID, CheckpointNumber: checkpointNumber, Number: n,
				})
			}))
	}
	if err != nil {
		s.log.Error("Error initializing checkpoint runners",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.ErrorField(err))
		return 0, ErrInitTracking
	}
	s.log.Debug("Initialized checkpoint runners",
		log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
		log.Int("num", len(numbers)))
	return len(numbers), nil
}

// InitializeBaseStationRunners works like InitializeCheckpointRunners for
// the base station view of a checkpoint.
func (s *Service) InitializeBaseStationRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
) (int, error) {
	numbers, err := s.missingNumbers(ctx, raceID, func() ([]int, error) {
		rows, err := s.repos.BaseStationRunner().LoadByCheckpoint(ctx, raceID, checkpointNumber)
		return lo.Map(rows, func(r *model.BaseStationRunner, _ int) int { return r.Number }), err
	})
	if err == nil {
		err = s.repos.BaseStationRunner().CreateBulk(ctx,
			lo.Map(numbers, func(n, _ int) *model.BaseStationRunner {
				return model.NewBaseStationRunner(model.ShadowKey{
					RaceID: raceID, CheckpointNumber: checkpointNumber, Number: n,
				})
			}))
	}
	if err != nil {
		s.log.Error("Error initializing base station runners",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.ErrorField(err))
		return 0, ErrInitTracking
	}
	s.log.Debug("Initialized base station runners",
		log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
		log.Int("num", len(numbers)))
	return len(numbers), nil
}

// missingNumbers returns the runner numbers of the race not contained in
// the numbers delivered by existing
func (s *Service) missingNumbers(
	ctx context.Context,
	raceID int,
	existing func() ([]int, error),
) ([]int, error) {
	runners, err := s.repos.Runner().LoadByRaceID(ctx, raceID)
	if err != nil {
		return nil, err
	}
	have, err := existing()
	if err != nil {
		return nil, err
	}
	all := lo.Map(runners, func(r *model.Runner, _ int) int { return r.Number })
	missing, _ := lo.Difference(all, have)
	return missing, nil
}

func (s *Service) GetCheckpointRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
) ([]*model.CheckpointRunner, error) {
	rows, err := s.repos.CheckpointRunner().LoadByCheckpoint(ctx, raceID, checkpointNumber)
	if err != nil {
		s.log.Error("Error loading checkpoint runners",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return rows, nil
}

func (s *Service) GetBaseStationRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
) ([]*model.BaseStationRunner, error) {
	rows, err := s.repos.BaseStationRunner().LoadByCheckpoint(ctx, raceID, checkpointNumber)
	if err != nil {
		s.log.Error("Error loading base station runners",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return rows, nil
}

// UpdateCheckpointRunner patches the checkpoint row of a runner, creating
// it if the checkpoint was not initialized for that runner yet.
func (s *Service) UpdateCheckpointRunner(
	ctx context.Context,
	raceID, checkpointNumber, number int,
	setter model.CheckpointRunnerSetter,
) error {
	key := model.ShadowKey{RaceID: raceID, CheckpointNumber: checkpointNumber, Number: number}
	if _, err := api.Upsert[model.CheckpointRunner, model.CheckpointRunnerSetter](
		ctx, s.repos.CheckpointRunner(), key, model.NewCheckpointRunner, setter,
		func(r *model.CheckpointRunner) int { return r.ID },
	); err != nil {
		s.log.Error("Error updating checkpoint runner",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.Int("number", number), log.ErrorField(err))
		return ErrUpdateRunner
	}
	return nil
}

// UpdateBaseStationRunner patches the base station row of a runner,
// creating it if needed.
func (s *Service) UpdateBaseStationRunner(
	ctx context.Context,
	raceID, checkpointNumber, number int,
	setter model.BaseStationRunnerSetter,
) error {
	key := model.ShadowKey{RaceID: raceID, CheckpointNumber: checkpointNumber, Number: number}
	if _, err := api.Upsert[model.BaseStationRunner, model.BaseStationRunnerSetter](
		ctx, s.repos.BaseStationRunner(), key, model.NewBaseStationRunner, setter,
		func(r *model.BaseStationRunner) int { return r.ID },
	); err != nil {
		s.log.Error("Error updating base station runner",
			log.Int("raceId", raceID), log.Int("checkpoint", checkpointNumber),
			log.Int("number", number), log.ErrorField(err))
		return ErrUpdateRunner
	}
	return nil
}

// MarkCheckpointRunner sets the status at a checkpoint. The mark off time
// defaults to now, the call in time is only written when given.
func (s *Service) MarkCheckpointRunner(
	ctx context.Context,
	raceID, checkpointNumber, number int,
	status model.Status,
	callIn, markOff *time.Time,
) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	setter := model.CheckpointRunnerSetter{
		Status:      omit.From(status),
		MarkOffTime: omitnull.From(s.timeOrNow(markOff)),
	}
	if callIn != nil {
		setter.CallInTime = omitnull.From(*callIn)
	}
	return s.UpdateCheckpointRunner(ctx, raceID, checkpointNumber, number, setter)
}

// MarkBaseStationRunner sets the status as seen by the base station.
// The common time defaults to now.
func (s *Service) MarkBaseStationRunner(
	ctx context.Context,
	raceID, checkpointNumber, number int,
	status model.Status,
	commonTime *time.Time,
) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.UpdateBaseStationRunner(ctx, raceID, checkpointNumber, number,
		model.BaseStationRunnerSetter{
			Status:     omit.From(status),
			CommonTime: omitnull.From(s.timeOrNow(commonTime)),
		})
}

// BulkMarkCheckpointRunners marks all numbers with the same mark off time.
func (s *Service) BulkMarkCheckpointRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
	numbers []int,
	status model.Status,
	markOff *time.Time,
) error {
	at := s.timeOrNow(markOff)
	for _, n := range numbers {
		if err := s.MarkCheckpointRunner(ctx, raceID, checkpointNumber, n,
			status, nil, &at); err != nil {
			return err
		}
	}
	return nil
}

// BulkMarkBaseStationRunners marks all numbers with one common time.
func (s *Service) BulkMarkBaseStationRunners(
	ctx context.Context,
	raceID, checkpointNumber int,
	numbers []int,
	status model.Status,
	commonTime *time.Time,
) error {
	at := s.timeOrNow(commonTime)
	for _, n := range numbers {
		if err := s.MarkBaseStationRunner(ctx, raceID, checkpointNumber, n,
			status, &at); err != nil {
			return err
		}
	}
	return nil
}
