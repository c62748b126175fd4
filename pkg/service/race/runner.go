//nolint:whitespace // can't make both editor and linter happy
package race

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

// RunnerUpdate is a single entry of BulkUpdateRunners
type RunnerUpdate struct {
	Number int
	Setter model.RunnerSetter
}

// GetRunners returns the runners of a race ordered by number.
func (s *Service) GetRunners(ctx context.Context, raceID int) ([]*model.Runner, error) {
	runners, err := s.repos.Runner().LoadByRaceID(ctx, raceID)
	if err != nil {
		s.log.Error("Error loading runners", log.Int("raceId", raceID), log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return runners, nil
}

func (s *Service) UpdateRunner(
	ctx context.Context,
	raceID, number int,
	setter model.RunnerSetter,
) error {
	runner, err := s.repos.Runner().LoadByRaceAndNumber(ctx, raceID, number)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return ErrRunnerNotFound
		}
		s.log.Error("Error loading runner",
			log.Int("raceId", raceID), log.Int("number", number), log.ErrorField(err))
		return ErrUpdateRunner
	}
	if _, err := s.repos.Runner().Update(ctx, runner.ID, setter); err != nil {
		s.log.Error("Error updating runner",
			log.Int("raceId", raceID), log.Int("number", number), log.ErrorField(err))
		return ErrUpdateRunner
	}
	return nil
}

// MarkRunnerStatus sets the status of a runner.
// Passing a runner records at (or the current time if at is nil),
// resetting to not-started clears the recorded time.
func (s *Service) MarkRunnerStatus(
	ctx context.Context,
	raceID, number int,
	status model.Status,
	at *time.Time,
) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	setter := model.RunnerSetter{Status: omit.From(status)}
	switch status {
	case model.StatusPassed:
		setter.RecordedTime = omitnull.From(s.timeOrNow(at))
	case model.StatusNotStarted:
		setter.RecordedTime = omitnull.FromPtr[time.Time](nil)
	default:
		if at != nil {
			setter.RecordedTime = omitnull.From(*at)
		}
	}
	return s.UpdateRunner(ctx, raceID, number, setter)
}

// BulkUpdateRunners applies the updates one after another.
// Processing stops at the first failure, earlier updates are kept.
func (s *Service) BulkUpdateRunners(
	ctx context.Context,
	raceID int,
	updates []RunnerUpdate,
) error {
	for i := range updates {
		if err := s.UpdateRunner(ctx, raceID, updates[i].Number, updates[i].Setter); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetCheckpoints(ctx context.Context, raceID int) ([]*model.Checkpoint, error) {
	cps, err := s.repos.Checkpoint().LoadByRaceID(ctx, raceID)
	if err != nil {
		s.log.Error("Error loading checkpoints", log.Int("raceId", raceID), log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return cps, nil
}

func (s *Service) AddCheckpoint(
	ctx context.Context,
	raceID, number int,
	name string,
) (int, error) {
	if _, err := s.GetRace(ctx, raceID); err != nil {
		return 0, err
	}
	id, err := s.repos.Checkpoint().Create(ctx, &model.Checkpoint{
		RaceID: raceID,
		Number: number,
		Name:   name,
	})
	if err != nil {
		if errors.Is(err, api.ErrDuplicate) {
			return 0, ErrCheckpointExists
		}
		s.log.Error("Error adding checkpoint",
			log.Int("raceId", raceID), log.Int("checkpoint", number), log.ErrorField(err))
		return 0, ErrAddCheckpoint
	}
	return id, nil
}

func (s *Service) timeOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return s.clock()
}
