package race

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mpapenbr/racetracker-store/log"
)

// DatabaseSize holds the number of rows per table
type DatabaseSize struct {
	Races              int `json:"races"`
	Runners            int `json:"runners"`
	Checkpoints        int `json:"checkpoints"`
	CheckpointRunners  int `json:"checkpointRunners"`
	BaseStationRunners int `json:"baseStationRunners"`
	Settings           int `json:"settings"`
	Total              int `json:"total"`
}

func (s *Service) GetDatabaseSize(ctx context.Context) (*DatabaseSize, error) {
	ret := &DatabaseSize{}
	counters := []struct {
		target *int
		fn     func(ctx context.Context) (int, error)
	}{
		{&ret.Races, s.repos.Race().Count},
		{&ret.Runners, s.repos.Runner().Count},
		{&ret.Checkpoints, s.repos.Checkpoint().Count},
		{&ret.CheckpointRunners, s.repos.CheckpointRunner().Count},
		{&ret.BaseStationRunners, s.repos.BaseStationRunner().Count},
		{&ret.Settings, s.repos.Setting().Count},
	}
	for _, c := range counters {
		n, err := c.fn(ctx)
		if err != nil {
			s.log.Error("Error counting rows", log.ErrorField(err))
			return nil, ErrLoadRace
		}
		*c.target = n
		ret.Total += n
	}
	return ret, nil
}

// CleanupOldRaces deletes all races created more than daysToKeep days ago.
// Returns the number of deleted races.
func (s *Service) CleanupOldRaces(ctx context.Context, daysToKeep int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "cleanup old races")
	defer span.End()

	cutoff := s.clock().AddDate(0, 0, -daysToKeep)
	races, err := s.repos.Race().LoadCreatedBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("Error loading old races", log.ErrorField(err))
		return 0, ErrCleanup
	}
	deleted := 0
	for _, race := range races {
		if err := s.DeleteRace(ctx, race.ID); err != nil {
			s.log.Warn("Cleanup aborted",
				log.Int("raceId", race.ID), log.Int("deleted", deleted))
			return deleted, ErrCleanup
		}
		deleted++
	}
	span.SetAttributes(attribute.Int("races.deleted", deleted))
	s.log.Info("Old races removed",
		log.Time("cutoff", cutoff), log.Int("deleted", deleted))
	return deleted, nil
}

// MigrateToIsolatedTracking seeds checkpoint and base station rows for every
// checkpoint of the race. Existing rows are left alone.
func (s *Service) MigrateToIsolatedTracking(ctx context.Context, raceID int) error {
	if _, err := s.GetRace(ctx, raceID); err != nil {
		return err
	}
	cps, err := s.GetCheckpoints(ctx, raceID)
	if err != nil {
		return err
	}
	for _, cp := range cps {
		if _, err := s.InitializeCheckpointRunners(ctx, raceID, cp.Number); err != nil {
			return err
		}
		if _, err := s.InitializeBaseStationRunners(ctx, raceID, cp.Number); err != nil {
			return err
		}
	}
	s.log.Info("Migrated race to isolated tracking",
		log.Int("raceId", raceID), log.Int("checkpoints", len(cps)))
	return nil
}
