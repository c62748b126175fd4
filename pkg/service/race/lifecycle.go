package race

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

// SaveRace stores a new race together with its checkpoints and runners.
// A race without configured checkpoints gets a single checkpoint 1.
// Configs expanding to more than model.MaxRunners runners are rejected.
func (s *Service) SaveRace(ctx context.Context, cfg model.RaceConfig) (int, error) {
	ctx, span := s.tracer.Start(ctx, "save race")
	defer span.End()

	if err := cfg.CheckRunnerCount(); err != nil {
		s.log.Error("Invalid race configuration",
			log.String("name", cfg.Name), log.ErrorField(err))
		return 0, ErrSaveRace
	}
	var raceID int
	err := s.txMgr.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.repos.Race().Create(ctx, &model.Race{
			RaceConfig: cfg,
			CreatedAt:  s.clock(),
		})
		if err != nil {
			return fmt.Errorf("create race: %w", err)
		}
		if err := s.repos.Checkpoint().CreateBulk(ctx, checkpointsOf(id, &cfg)); err != nil {
			return fmt.Errorf("create checkpoints: %w", err)
		}
		runners := lo.Map(cfg.RunnerNumbers(), func(n, _ int) *model.Runner {
			return model.NewRunner(id, n)
		})
		if err := s.repos.Runner().CreateBulk(ctx, runners); err != nil {
			return fmt.Errorf("create runners: %w", err)
		}
		raceID = id
		return nil
	})
	if err != nil {
		s.log.Error("Error saving race",
			log.String("name", cfg.Name),
			log.String("date", cfg.Date),
			log.ErrorField(err))
		return 0, ErrSaveRace
	}
	span.SetAttributes(attribute.Int("race.id", raceID))
	s.log.Info("Race saved",
		log.Int("raceId", raceID),
		log.String("name", cfg.Name),
		log.String("date", cfg.Date))
	return raceID, nil
}

func checkpointsOf(raceID int, cfg *model.RaceConfig) []*model.Checkpoint {
	if len(cfg.Checkpoints) == 0 {
		return []*model.Checkpoint{{RaceID: raceID, Number: 1, Name: "Checkpoint 1"}}
	}
	ret := make([]*model.Checkpoint, 0, len(cfg.Checkpoints))
	seen := map[int]bool{}
	for _, cp := range cfg.Checkpoints {
		if seen[cp.Number] {
			continue
		}
		seen[cp.Number] = true
		ret = append(ret, &model.Checkpoint{RaceID: raceID, Number: cp.Number, Name: cp.Name})
	}
	return ret
}

func (s *Service) GetRace(ctx context.Context, id int) (*model.Race, error) {
	race, err := s.repos.Race().LoadByID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return nil, ErrRaceNotFound
		}
		s.log.Error("Error loading race", log.Int("raceId", id), log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return race, nil
}

// GetAllRaces returns all races, newest first.
func (s *Service) GetAllRaces(ctx context.Context) ([]*model.Race, error) {
	races, err := s.repos.Race().LoadAll(ctx)
	if err != nil {
		s.log.Error("Error loading races", log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return races, nil
}

// GetCurrentRace returns the race selected via SetCurrentRace if it still
// exists, otherwise the most recently created race.
// Returns nil if there are no races at all.
func (s *Service) GetCurrentRace(ctx context.Context) (*model.Race, error) {
	if setting, err := s.repos.Setting().Load(ctx, SettingCurrentRace); err == nil {
		if id, convErr := strconv.Atoi(string(setting.Value)); convErr == nil {
			race, loadErr := s.repos.Race().LoadByID(ctx, id)
			switch {
			case loadErr == nil:
				return race, nil
			case !errors.Is(loadErr, api.ErrNoRows):
				s.log.Error("Error loading current race", log.ErrorField(loadErr))
				return nil, ErrLoadRace
			}
		}
	} else if !errors.Is(err, api.ErrNoRows) {
		s.log.Error("Error loading current race setting", log.ErrorField(err))
		return nil, ErrLoadRace
	}

	race, err := s.repos.Race().LoadLatest(ctx)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return nil, nil
		}
		s.log.Error("Error loading latest race", log.ErrorField(err))
		return nil, ErrLoadRace
	}
	return race, nil
}

func (s *Service) SetCurrentRace(ctx context.Context, id int) error {
	if _, err := s.GetRace(ctx, id); err != nil {
		return err
	}
	return s.SaveSetting(ctx, SettingCurrentRace, []byte(strconv.Itoa(id)))
}

// DeleteRace removes the race and all its dependent data in one transaction.
func (s *Service) DeleteRace(ctx context.Context, id int) error {
	ctx, span := s.tracer.Start(ctx, "delete race")
	defer span.End()
	span.SetAttributes(attribute.Int("race.id", id))

	err := s.txMgr.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		var num int

		num, err = s.repos.BaseStationRunner().DeleteByRaceID(ctx, id)
		if err != nil {
			return err
		}
		s.log.Debug("Deleted base station runners", log.Int("num", num))

		num, err = s.repos.CheckpointRunner().DeleteByRaceID(ctx, id)
		if err != nil {
			return err
		}
		s.log.Debug("Deleted checkpoint runners", log.Int("num", num))

		num, err = s.repos.Runner().DeleteByRaceID(ctx, id)
		if err != nil {
			return err
		}
		s.log.Debug("Deleted runners", log.Int("num", num))

		num, err = s.repos.Checkpoint().DeleteByRaceID(ctx, id)
		if err != nil {
			return err
		}
		s.log.Debug("Deleted checkpoints", log.Int("num", num))

		_, err = s.repos.Race().DeleteByID(ctx, id)
		return err
	})
	if err != nil {
		s.log.Error("Error deleting race", log.Int("raceId", id), log.ErrorField(err))
		return ErrDeleteRace
	}
	s.log.Info("Race deleted", log.Int("raceId", id))
	return nil
}

// ClearAllData empties every table, settings included.
func (s *Service) ClearAllData(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "clear all data")
	defer span.End()

	deleters := []struct {
		name string
		fn   func(ctx context.Context) (int, error)
	}{
		{"base station runners", s.repos.BaseStationRunner().DeleteAll},
		{"checkpoint runners", s.repos.CheckpointRunner().DeleteAll},
		{"runners", s.repos.Runner().DeleteAll},
		{"checkpoints", s.repos.Checkpoint().DeleteAll},
		{"races", s.repos.Race().DeleteAll},
		{"settings", s.repos.Setting().DeleteAll},
	}
	err := s.txMgr.RunInTx(ctx, func(ctx context.Context) error {
		for _, d := range deleters {
			num, err := d.fn(ctx)
			if err != nil {
				return fmt.Errorf("delete %s: %w", d.name, err)
			}
			s.log.Debug("Deleted "+d.name, log.Int("num", num))
		}
		return nil
	})
	if err != nil {
		s.log.Error("Error clearing data", log.ErrorField(err))
		return ErrCleanup
	}
	s.log.Info("All data cleared")
	return nil
}
