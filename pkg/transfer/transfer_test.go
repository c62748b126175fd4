//nolint:funlen //ok for this test code
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/opt/omitnull"
	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/report"
	"github.com/mpapenbr/racetracker-store/pkg/repository/memory"
	"github.com/mpapenbr/racetracker-store/pkg/service/race"
	"github.com/mpapenbr/racetracker-store/testsupport/basedata"
)

type device struct {
	store *memory.Store
	races *race.Service
	svc   *Service
}

func newDevice() *device {
	store := memory.New()
	clock := func() time.Time { return basedata.TestTime() }
	races := race.NewService(
		race.WithRepositories(store),
		race.WithTxManager(store),
		race.WithClock(clock),
	)
	return &device{
		store: store,
		races: races,
		svc: NewService(
			WithRaceService(races),
			WithReportOptions(report.WithClock(clock), report.WithLocation(time.UTC)),
		),
	}
}

func at(hhmmss string) *time.Time {
	t, err := time.Parse(time.RFC3339, "2024-04-28T"+hhmmss+"Z")
	if err != nil {
		panic(err)
	}
	return &t
}

// prepare creates the sample race and records some results on it
func (d *device) prepare(t *testing.T) int {
	t.Helper()
	ctx := context.Background()
	id, err := d.races.SaveRace(ctx, basedata.SampleRaceConfig())
	require.NoError(t, err)
	require.NoError(t, d.races.MarkRunnerStatus(ctx, id, 1, model.StatusPassed, at("09:15:00")))
	require.NoError(t, d.races.MarkRunnerStatus(ctx, id, 3, model.StatusDNF, nil))
	require.NoError(t, d.races.UpdateRunner(ctx, id, 3,
		model.RunnerSetter{Notes: omitnull.From("twisted ankle")}))
	require.NoError(t, d.races.MarkCheckpointRunner(ctx, id, 1, 1, model.StatusPassed,
		at("08:00:00"), at("08:01:00")))
	require.NoError(t, d.races.MarkBaseStationRunner(ctx, id, 2, 10,
		model.StatusNonStarter, at("10:00:00")))
	return id
}

func roundTrip(t *testing.T, doc *Document) []byte {
	t.Helper()
	raw, err := doc.Marshal()
	require.NoError(t, err)
	return raw
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newDevice()
	srcID := src.prepare(t)
	_, err := src.races.AddCheckpoint(ctx, srcID, 9, "Summit")
	require.NoError(t, err)

	exported, err := src.svc.ExportRaceConfig(ctx, srcID)
	require.NoError(t, err)
	assert.Contains(t, exported.RaceConfig.Checkpoints,
		model.CheckpointInfo{Number: 9, Name: "Summit"})
	assert.Equal(t, ExportFullRaceData, exported.ExportType)
	assert.Equal(t, DocumentVersion, exported.Version)
	assert.Len(t, exported.Runners, 5)
	assert.Len(t, exported.CheckpointRunners, 1)

	dst := newDevice()
	dstID, err := dst.svc.ImportRaceConfig(ctx, roundTrip(t, exported))
	require.NoError(t, err)

	again, err := dst.svc.ExportRaceConfig(ctx, dstID)
	require.NoError(t, err)
	if diff := cmp.Diff(exported, again); diff != "" {
		t.Errorf("round trip mismatch (-src +dst):\n%s", diff)
	}
	srcCps, dstCps := checkpointsOf(t, src, srcID), checkpointsOf(t, dst, dstID)
	assert.Contains(t, dstCps, model.CheckpointInfo{Number: 9, Name: "Summit"})
	if diff := cmp.Diff(srcCps, dstCps); diff != "" {
		t.Errorf("checkpoint mismatch (-src +dst):\n%s", diff)
	}
}

func checkpointsOf(t *testing.T, d *device, raceID int) []model.CheckpointInfo {
	t.Helper()
	cps, err := d.races.GetCheckpoints(context.Background(), raceID)
	require.NoError(t, err)
	return lo.Map(cps, func(cp *model.Checkpoint, _ int) model.CheckpointInfo {
		return model.CheckpointInfo{Number: cp.Number, Name: cp.Name}
	})
}

func TestExportWithoutShadowRows(t *testing.T) {
	ctx := context.Background()
	d := newDevice()
	id, err := d.races.SaveRace(ctx, basedata.SampleRaceConfig())
	require.NoError(t, err)

	doc, err := d.svc.ExportRaceConfig(ctx, id)
	require.NoError(t, err)
	raw := roundTrip(t, doc)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, []any{}, generic["checkpointRunners"])
	assert.NotContains(t, generic, "baseStationRunners")
	assert.Equal(t, "full-race-data", generic["exportType"])

	_, err = d.svc.ExportRaceConfig(ctx, id+1)
	assert.ErrorIs(t, err, race.ErrRaceNotFound)
}

func TestMergeIntoExistingRace(t *testing.T) {
	ctx := context.Background()
	local := newDevice()
	localID := local.prepare(t)

	// the other device saw runner 2 finish, runner 3 as non-starter and has
	// extra notes for runner 1
	remote := newDevice()
	remoteID, err := remote.races.SaveRace(ctx, basedata.SampleRaceConfig())
	require.NoError(t, err)
	require.NoError(t, remote.races.MarkRunnerStatus(ctx, remoteID, 2, model.StatusPassed,
		at("09:30:00")))
	require.NoError(t, remote.races.MarkRunnerStatus(ctx, remoteID, 3, model.StatusNonStarter,
		nil))
	require.NoError(t, remote.races.MarkRunnerStatus(ctx, remoteID, 1, model.StatusPassed,
		at("09:10:00")))
	require.NoError(t, remote.races.UpdateRunner(ctx, remoteID, 1,
		model.RunnerSetter{Notes: omitnull.From("gel at cp2")}))
	require.NoError(t, remote.races.MarkCheckpointRunner(ctx, remoteID, 1, 1,
		model.StatusDNF, nil, at("08:30:00")))
	doc, err := remote.svc.ExportRaceConfig(ctx, remoteID)
	require.NoError(t, err)
	// a runner unknown to the local race
	doc.Runners = append(doc.Runners, RunnerRecord{Number: 99, Status: model.StatusPassed})
	raw := roundTrip(t, doc)

	res, err := local.svc.Import(ctx, raw)
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, localID, res.RaceID)
	assert.Equal(t, &MergeReport{Updated: 3, Skipped: 2, Unmatched: 1, ShadowRows: 1}, res.Report)

	runners, err := local.races.GetRunners(ctx, localID)
	require.NoError(t, err)
	byNumber := map[int]*model.Runner{}
	for _, r := range runners {
		byNumber[r.Number] = r
	}
	// recorded time keeps the later value
	assert.Equal(t, model.StatusPassed, byNumber[1].Status)
	assert.True(t, byNumber[1].RecordedTime.Equal(*at("09:15:00")))
	assert.Equal(t, "gel at cp2", *byNumber[1].Notes)
	assert.Equal(t, model.StatusPassed, byNumber[2].Status)
	assert.Equal(t, model.StatusNonStarter, byNumber[3].Status)
	assert.Equal(t, "twisted ankle", *byNumber[3].Notes)

	cp, err := local.races.GetCheckpointRunners(ctx, localID, 1)
	require.NoError(t, err)
	require.Len(t, cp, 1)
	// checkpoint records are taken as they are
	assert.Equal(t, model.StatusDNF, cp[0].Status)
	assert.Nil(t, cp[0].CallInTime)

	before, err := local.svc.ExportRaceConfig(ctx, localID)
	require.NoError(t, err)
	res, err = local.svc.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Report.Updated)
	after, err := local.svc.ExportRaceConfig(ctx, localID)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("merge not idempotent (-before +after):\n%s", diff)
	}

	races, _ := local.races.GetAllRaces(ctx)
	assert.Len(t, races, 1)
}

func TestMergeNotesConcatenation(t *testing.T) {
	ctx := context.Background()
	d := newDevice()
	id, err := d.races.SaveRace(ctx, basedata.SampleRaceConfig())
	require.NoError(t, err)
	require.NoError(t, d.races.UpdateRunner(ctx, id, 2,
		model.RunnerSetter{Notes: omitnull.From("blue shirt")}))

	doc, err := d.svc.ExportRaceConfig(ctx, id)
	require.NoError(t, err)
	doc.Runners[1].Notes = basedata.Ptr("limping")

	rep, err := d.svc.MergeRaceData(ctx, id, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Updated)

	r, err := d.store.Runner().LoadByRaceAndNumber(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, "blue shirt | limping", *r.Notes)
}

func TestIsolatedImports(t *testing.T) {
	ctx := context.Background()
	station := newDevice()
	stationID := station.prepare(t)

	cpDoc, err := station.svc.ExportIsolatedCheckpointResults(ctx, stationID, 1)
	require.NoError(t, err)
	assert.Equal(t, ExportIsolatedCheckpointResults, cpDoc.ExportType)
	assert.Equal(t, 1, cpDoc.CheckpointNumber)
	assert.Empty(t, cpDoc.Runners)
	require.Len(t, cpDoc.CheckpointRunners, 1)
	assert.Equal(t, "Mountain-Trail-50k-2024-04-28-checkpoint-1.json", cpDoc.Filename())

	bsDoc, err := station.svc.ExportIsolatedBaseStationResults(ctx, stationID, 2)
	require.NoError(t, err)
	require.Len(t, bsDoc.BaseStationRunners, 1)
	assert.Empty(t, bsDoc.CheckpointRunners)

	base := newDevice()
	baseID := base.prepare(t)

	// an isolated import never merges, it creates another race
	newID, err := base.svc.ImportRaceConfig(ctx, roundTrip(t, cpDoc))
	require.NoError(t, err)
	assert.NotEqual(t, baseID, newID)
	rows, err := base.races.GetCheckpointRunners(ctx, newID, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.StatusPassed, rows[0].Status)
	runners, err := base.races.GetRunners(ctx, newID)
	require.NoError(t, err)
	for _, r := range runners {
		assert.Equal(t, model.StatusNotStarted, r.Status)
	}

	bsID, err := base.svc.ImportRaceConfig(ctx, roundTrip(t, bsDoc))
	require.NoError(t, err)
	bsRows, err := base.races.GetBaseStationRunners(ctx, bsID, 2)
	require.NoError(t, err)
	require.Len(t, bsRows, 1)
	assert.Equal(t, model.StatusNonStarter, bsRows[0].Status)
	assert.True(t, bsRows[0].CommonTime.Equal(*at("10:00:00")))

	races, _ := base.races.GetAllRaces(ctx)
	assert.Len(t, races, 3)
}

func TestImportValidation(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"not json", `{"raceConfig":`, "document"},
		{"array", `[]`, "document"},
		{"no race config", `{"runners":[]}`, "raceConfig"},
		{
			"empty name",
			`{"raceConfig":{"name":"","date":"2024-04-28","startTime":"07:00","minRunner":1,"maxRunner":2}}`,
			"raceConfig.name",
		},
		{
			"bad date",
			`{"raceConfig":{"name":"A","date":"28.04.2024","startTime":"07:00","minRunner":1,"maxRunner":2}}`,
			"raceConfig.date",
		},
		{
			"missing start",
			`{"raceConfig":{"name":"A","date":"2024-04-28","minRunner":1,"maxRunner":2}}`,
			"raceConfig.startTime",
		},
		{
			"string number",
			`{"raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":"1","maxRunner":2}}`,
			"raceConfig.minRunner",
		},
		{
			"newer version",
			`{"version":"2.0.0","raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":1,"maxRunner":2}}`,
			"version",
		},
		{
			"unknown export type",
			`{"exportType":"partial","raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":1,"maxRunner":2}}`,
			"exportType",
		},
		{
			"huge runner span",
			`{"raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":0,"maxRunner":1000000000000000}}`,
			"raceConfig.maxRunner",
		},
		{
			"huge runner range",
			`{"raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":1,"maxRunner":2,` +
				`"runnerRanges":[{"min":1,"max":3},{"min":0,"max":1000000000000}]}}`,
			"raceConfig.runnerRanges",
		},
		{
			"unknown status",
			`{"raceConfig":{"name":"A","date":"2024-04-28","startTime":"07:00","minRunner":1,"maxRunner":2},"runners":[{"number":1,"status":"lost"}]}`,
			"document",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDevice()
			_, err := d.svc.ImportRaceConfig(context.Background(), []byte(tt.raw))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
			n, _ := d.store.Race().Count(context.Background())
			assert.Equal(t, 0, n)
		})
	}
}

func TestImportLegacyDocument(t *testing.T) {
	ctx := context.Background()
	d := newDevice()
	raw := `{"version":"0.9","raceConfig":{"name":"Old Race","date":"2023-10-01",` +
		`"startTime":"08:30:00","minRunner":1,"maxRunner":3},` +
		`"runners":[{"number":2,"status":"passed","recordedTime":"2023-10-01T09:00:00Z","notes":null}]}`

	id, err := d.svc.ImportRaceConfig(ctx, []byte(raw))
	require.NoError(t, err)
	r, err := d.store.Runner().LoadByRaceAndNumber(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, r.Status)
	cps, _ := d.races.GetCheckpoints(ctx, id)
	assert.Len(t, cps, 1)
}

func TestExportRaceResults(t *testing.T) {
	ctx := context.Background()
	d := newDevice()
	id := d.prepare(t)

	res, err := d.svc.ExportRaceResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mountain-Trail-50k-2024-04-28-results.csv", res.Filename)
	assert.Contains(t, string(res.Content), "1,passed,2024-04-28T09:15:00Z,02:15:00,\n")
	assert.Contains(t, string(res.Content), "3,dnf,,,twisted ankle\n")
}
