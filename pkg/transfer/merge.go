package transfer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/transfer/merge"
)

// MergeReport counts what happened to the imported records
type MergeReport struct {
	// runners changed by the import
	Updated int
	// runners without any change
	Skipped int
	// imported runners unknown in the target race
	Unmatched int
	// checkpoint and base station records written
	ShadowRows int
}

// MergeRaceData merges the runners of doc into the race. Status and recorded
// time only move forward, notes are appended. Checkpoint and base station
// records of doc replace the local ones.
// Writes happen one after another, a failure keeps the writes done so far.
func (s *Service) MergeRaceData(ctx context.Context, raceID int, doc *Document) (
	*MergeReport, error,
) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "merge race data")
	defer span.End()
	defer s.record(ctx, "merge", start)
	span.SetAttributes(attribute.Int("race.id", raceID))

	runners, err := s.races.GetRunners(ctx, raceID)
	if err != nil {
		return nil, ErrImportRace
	}
	byNumber := make(map[int]*model.Runner, len(runners))
	for _, r := range runners {
		byNumber[r.Number] = r
	}

	report := &MergeReport{}
	for i := range doc.Runners {
		existing, ok := byNumber[doc.Runners[i].Number]
		if !ok {
			report.Unmatched++
			continue
		}
		setter := merge.ResolveRunner(existing, doc.Runners[i].toModel(raceID))
		if setter.IsEmpty() {
			report.Skipped++
			continue
		}
		if _, err := s.races.Repositories().Runner().Update(ctx, existing.ID, setter); err != nil {
			s.log.Error("Error merging runner",
				log.Int("raceId", raceID), log.Int("number", existing.Number),
				log.ErrorField(err))
			return report, ErrImportRace
		}
		// later records for the same number see the merged state
		setter.Apply(existing)
		report.Updated++
	}
	if err := s.applyShadowRows(ctx, raceID, doc, report); err != nil {
		return report, err
	}
	s.log.Info("Race data merged",
		log.Int("raceId", raceID),
		log.Int("updated", report.Updated),
		log.Int("skipped", report.Skipped),
		log.Int("unmatched", report.Unmatched),
		log.Int("shadowRows", report.ShadowRows))
	return report, nil
}
