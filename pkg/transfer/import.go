//nolint:whitespace // can't make both editor and linter happy
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/service/race"
	"github.com/mpapenbr/racetracker-store/pkg/transfer/merge"
)

// ImportResult describes what an import did
type ImportResult struct {
	RaceID int
	// Merged is true if the data was merged into an existing race
	Merged bool
	Report *MergeReport
}

// ImportRaceConfig imports an export document and returns the id of the
// race that received the data.
func (s *Service) ImportRaceConfig(ctx context.Context, raw []byte) (int, error) {
	res, err := s.Import(ctx, raw)
	if err != nil {
		return 0, err
	}
	return res.RaceID, nil
}

// Import validates and imports an export document.
// A full export of a race already present (same name and date) is merged
// into that race. Everything else creates a new race.
func (s *Service) Import(ctx context.Context, raw []byte) (*ImportResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "import race")
	defer span.End()
	defer s.record(ctx, "import", start)

	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("export.type", string(doc.ExportType)))

	existing, err := s.races.Repositories().Race().LoadByNameAndDate(ctx,
		doc.RaceConfig.Name, doc.RaceConfig.Date)
	switch {
	case err == nil && doc.ExportType == ExportFullRaceData:
		report, mergeErr := s.MergeRaceData(ctx, existing.ID, doc)
		if mergeErr != nil {
			return nil, mergeErr
		}
		return &ImportResult{RaceID: existing.ID, Merged: true, Report: report}, nil
	case err == nil:
		s.log.Warn("Race exists, importing results as a new race",
			log.Int("existingRaceId", existing.ID),
			log.String("name", doc.RaceConfig.Name),
			log.String("exportType", string(doc.ExportType)))
	case !errors.Is(err, api.ErrNoRows):
		s.log.Error("Error looking up race", log.ErrorField(err))
		return nil, ErrImportRace
	}

	raceID, err := s.races.SaveRace(ctx, doc.RaceConfig)
	if err != nil {
		return nil, ErrImportRace
	}
	report, err := s.applyToNewRace(ctx, raceID, doc)
	if err != nil {
		return nil, err
	}
	s.log.Info("Race imported",
		log.Int("raceId", raceID),
		log.String("exportType", string(doc.ExportType)),
		log.Int("updated", report.Updated),
		log.Int("shadowRows", report.ShadowRows))
	return &ImportResult{RaceID: raceID, Report: report}, nil
}

// Decode validates raw and decodes it into a Document.
// Documents without an export type are treated as full race data.
func Decode(raw []byte) (*Document, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	if err := doc.RaceConfig.CheckRunnerCount(); err != nil {
		field := "raceConfig.maxRunner"
		if len(doc.RaceConfig.RunnerRanges) > 0 {
			field = "raceConfig.runnerRanges"
		}
		return nil, &ValidationError{Field: field, Reason: err.Error()}
	}
	if doc.ExportType == "" {
		doc.ExportType = ExportFullRaceData
	}
	return doc, nil
}

// applyToNewRace writes the imported data onto the defaults of a freshly
// created race. Runners only get their non default values, shadow rows are
// taken as they are.
func (s *Service) applyToNewRace(ctx context.Context, raceID int, doc *Document) (
	*MergeReport, error,
) {
	report := &MergeReport{}
	if doc.ExportType == ExportFullRaceData {
		for i := range doc.Runners {
			setter := merge.Fresh(doc.Runners[i].toModel(raceID))
			if setter.IsEmpty() {
				report.Skipped++
				continue
			}
			err := s.races.UpdateRunner(ctx, raceID, doc.Runners[i].Number, setter)
			switch {
			case err == nil:
				report.Updated++
			case errors.Is(err, race.ErrRunnerNotFound):
				report.Unmatched++
			default:
				return report, ErrImportRace
			}
		}
	}
	if err := s.applyShadowRows(ctx, raceID, doc, report); err != nil {
		return report, err
	}
	return report, nil
}

// applyShadowRows upserts every checkpoint and base station record.
// The imported record replaces the local one.
func (s *Service) applyShadowRows(
	ctx context.Context,
	raceID int,
	doc *Document,
	report *MergeReport,
) error {
	for _, r := range doc.CheckpointRunners {
		if err := s.races.UpdateCheckpointRunner(ctx, raceID, r.CheckpointNumber, r.Number,
			model.CheckpointRunnerSetter{
				Status:      omit.From(statusOrDefault(r.Status)),
				CallInTime:  omitnull.FromPtr(r.CallInTime),
				MarkOffTime: omitnull.FromPtr(r.MarkOffTime),
				Notes:       omitnull.FromPtr(r.Notes),
			}); err != nil {
			return ErrImportRace
		}
		report.ShadowRows++
	}
	for _, r := range doc.BaseStationRunners {
		if err := s.races.UpdateBaseStationRunner(ctx, raceID, r.CheckpointNumber, r.Number,
			model.BaseStationRunnerSetter{
				Status:     omit.From(statusOrDefault(r.Status)),
				CommonTime: omitnull.FromPtr(r.CommonTime),
				Notes:      omitnull.FromPtr(r.Notes),
			}); err != nil {
			return ErrImportRace
		}
		report.ShadowRows++
	}
	return nil
}

// records written without a status count as not started
func statusOrDefault(st model.Status) model.Status {
	if st.Valid() {
		return st
	}
	return model.StatusNotStarted
}
