package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/report"
	"github.com/mpapenbr/racetracker-store/pkg/service/race"
)

var (
	ErrExportRace = errors.New("failed to export race data")
	ErrImportRace = errors.New("failed to import race data")
)

var meter = otel.Meter("rts.transfer")

type Option func(*Service)

func WithRaceService(races *race.Service) Option {
	return func(s *Service) {
		s.races = races
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithReportOptions are passed to the CSV generator by ExportRaceResults
func WithReportOptions(opts ...report.Option) Option {
	return func(s *Service) {
		s.reportOpts = append(s.reportOpts, opts...)
	}
}

type Service struct {
	log        *log.Logger
	races      *race.Service
	tracer     trace.Tracer
	durations  metric.Float64Histogram
	reportOpts []report.Option
}

func NewService(opts ...Option) *Service {
	ret := &Service{
		log: log.Default().Named("transfer"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("rts")
	}
	ret.durations, _ = meter.Float64Histogram("transfer_duration",
		metric.WithDescription("duration of import and merge operations"),
		metric.WithUnit("s"))
	return ret
}

func (s *Service) record(ctx context.Context, op string, start time.Time) {
	if s.durations == nil {
		return
	}
	s.durations.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", op)))
}

// ExportRaceConfig exports the race with all runners and checkpoint results.
func (s *Service) ExportRaceConfig(ctx context.Context, raceID int) (*Document, error) {
	ctx, span := s.tracer.Start(ctx, "export race")
	defer span.End()

	r, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	runners, err := s.races.GetRunners(ctx, raceID)
	if err != nil {
		return nil, ErrExportRace
	}
	cpRunners, err := s.races.Repositories().CheckpointRunner().LoadByRaceID(ctx, raceID)
	if err != nil {
		s.log.Error("Error loading checkpoint runners", log.Int("raceId", raceID),
			log.ErrorField(err))
		return nil, ErrExportRace
	}
	doc := s.newDocument(r, ExportFullRaceData)
	for _, runner := range runners {
		doc.Runners = append(doc.Runners, runnerRecord(runner))
	}
	for _, row := range cpRunners {
		doc.CheckpointRunners = append(doc.CheckpointRunners, checkpointRunnerRecord(row))
	}
	return doc, nil
}

// ExportIsolatedCheckpointResults exports the results of a single checkpoint.
//
//nolint:whitespace,dupl // can't make both editor and linter happy
func (s *Service) ExportIsolatedCheckpointResults(
	ctx context.Context,
	raceID, checkpointNumber int,
) (*Document, error) {
	ctx, span := s.tracer.Start(ctx, "export checkpoint results")
	defer span.End()

	r, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	rows, err := s.races.GetCheckpointRunners(ctx, raceID, checkpointNumber)
	if err != nil {
		return nil, ErrExportRace
	}
	doc := s.newDocument(r, ExportIsolatedCheckpointResults)
	doc.CheckpointNumber = checkpointNumber
	for _, row := range rows {
		doc.CheckpointRunners = append(doc.CheckpointRunners, checkpointRunnerRecord(row))
	}
	return doc, nil
}

// ExportIsolatedBaseStationResults exports the base station view of a
// single checkpoint.
//
//nolint:whitespace,dupl // can't make both editor and linter happy
func (s *Service) ExportIsolatedBaseStationResults(
	ctx context.Context,
	raceID, checkpointNumber int,
) (*Document, error) {
	ctx, span := s.tracer.Start(ctx, "export base station results")
	defer span.End()

	r, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	rows, err := s.races.GetBaseStationRunners(ctx, raceID, checkpointNumber)
	if err != nil {
		return nil, ErrExportRace
	}
	doc := s.newDocument(r, ExportIsolatedBaseStationResults)
	doc.CheckpointNumber = checkpointNumber
	doc.BaseStationRunners = []BaseStationRunnerRecord{}
	for _, row := range rows {
		doc.BaseStationRunners = append(doc.BaseStationRunners, baseStationRunnerRecord(row))
	}
	return doc, nil
}

// ExportRaceResults renders the results of the race as CSV.
func (s *Service) ExportRaceResults(ctx context.Context, raceID int) (*report.Result, error) {
	r, err := s.loadRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	runners, err := s.races.GetRunners(ctx, raceID)
	if err != nil {
		return nil, ErrExportRace
	}
	res, err := report.GenerateCSV(r.RaceConfig, runners, s.reportOpts...)
	if err != nil {
		s.log.Error("Error generating results", log.Int("raceId", raceID), log.ErrorField(err))
		return nil, ErrExportRace
	}
	return res, nil
}

func (s *Service) loadRace(ctx context.Context, raceID int) (*model.Race, error) {
	r, err := s.races.GetRace(ctx, raceID)
	if err != nil {
		if errors.Is(err, race.ErrRaceNotFound) {
			return nil, err
		}
		return nil, ErrExportRace
	}
	// checkpoints may have been added after the race was saved
	cps, err := s.races.GetCheckpoints(ctx, raceID)
	if err != nil {
		return nil, ErrExportRace
	}
	r.Checkpoints = lo.Map(cps, func(cp *model.Checkpoint, _ int) model.CheckpointInfo {
		return model.CheckpointInfo{Number: cp.Number, Name: cp.Name}
	})
	return r, nil
}

func (s *Service) newDocument(r *model.Race, exportType ExportType) *Document {
	return &Document{
		RaceConfig:        r.RaceConfig,
		Runners:           []RunnerRecord{},
		CheckpointRunners: []CheckpointRunnerRecord{},
		ExportedAt:        s.races.Now().UTC(),
		Version:           DocumentVersion,
		ExportType:        exportType,
	}
}
