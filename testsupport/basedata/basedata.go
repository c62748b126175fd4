package basedata

import (
	"context"
	"log"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleRaceConfig() model.RaceConfig {
	return model.RaceConfig{
		Name:      "Mountain Trail 50k",
		Date:      "2024-04-28",
		StartTime: "07:00",
		MinRunner: 1,
		MaxRunner: 5,
		RunnerRanges: []model.RunnerRange{
			{Min: 1, Max: 3},
			{IsIndividual: true, IndividualNumbers: []int{10, 12}},
		},
		Checkpoints: []model.CheckpointInfo{
			{Number: 1, Name: "Creek Crossing"},
			{Number: 2, Name: "Summit"},
		},
	}
}

func SampleRace() *model.Race {
	return &model.Race{
		RaceConfig: SampleRaceConfig(),
		Metadata:   map[string]any{"organizer": "trail club"},
		CreatedAt:  TestTime(),
	}
}

// CreateSampleRace stores the sample race with runners and checkpoints
// using the given repositories and returns the id of the race.
func CreateSampleRace(ctx context.Context, repos api.Repositories) int {
	race := SampleRace()
	id, err := repos.Race().Create(ctx, race)
	if err != nil {
		log.Fatalf("createSampleRace: %v\n", err)
	}
	runners := []*model.Runner{}
	for _, n := range race.RunnerNumbers() {
		runners = append(runners, model.NewRunner(id, n))
	}
	if err := repos.Runner().CreateBulk(ctx, runners); err != nil {
		log.Fatalf("createSampleRace: %v\n", err)
	}
	cps := []*model.Checkpoint{}
	for _, cp := range race.Checkpoints {
		cps = append(cps, &model.Checkpoint{RaceID: id, Number: cp.Number, Name: cp.Name})
	}
	if err := repos.Checkpoint().CreateBulk(ctx, cps); err != nil {
		log.Fatalf("createSampleRace: %v\n", err)
	}
	return id
}

func Ptr[T any](v T) *T {
	return &v
}
