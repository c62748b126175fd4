// Package transfer moves race data between devices as JSON export files
// and reconciles imported data with the local copy of a race.
package transfer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

// DocumentVersion is written into every export. Imports with a newer major
// version are rejected.
const DocumentVersion = "1.0.0"

type ExportType string

const (
	ExportFullRaceData               ExportType = "full-race-data"
	ExportIsolatedCheckpointResults  ExportType = "isolated-checkpoint-results"
	ExportIsolatedBaseStationResults ExportType = "isolated-base-station-results"
)

func (t ExportType) Valid() bool {
	switch t {
	case ExportFullRaceData, ExportIsolatedCheckpointResults, ExportIsolatedBaseStationResults:
		return true
	}
	return false
}

type (
	Document struct {
		RaceConfig         model.RaceConfig          `json:"raceConfig"`
		Runners            []RunnerRecord            `json:"runners"`
		CheckpointRunners  []CheckpointRunnerRecord  `json:"checkpointRunners"`
		BaseStationRunners []BaseStationRunnerRecord `json:"baseStationRunners,omitempty"`
		// set for isolated exports only
		CheckpointNumber int        `json:"checkpointNumber,omitempty"`
		ExportedAt       time.Time  `json:"exportedAt"`
		Version          string     `json:"version"`
		ExportType       ExportType `json:"exportType"`
	}

	RunnerRecord struct {
		Number       int          `json:"number"`
		Status       model.Status `json:"status"`
		RecordedTime *time.Time   `json:"recordedTime"`
		Notes        *string      `json:"notes"`
	}

	CheckpointRunnerRecord struct {
		CheckpointNumber int          `json:"checkpointNumber"`
		Number           int          `json:"number"`
		MarkOffTime      *time.Time   `json:"markOffTime"`
		CallInTime       *time.Time   `json:"callInTime"`
		Status           model.Status `json:"status"`
		Notes            *string      `json:"notes"`
	}

	BaseStationRunnerRecord struct {
		CheckpointNumber int          `json:"checkpointNumber"`
		Number           int          `json:"number"`
		CommonTime       *time.Time   `json:"commonTime"`
		Status           model.Status `json:"status"`
		Notes            *string      `json:"notes"`
	}
)

var whitespace = regexp.MustCompile(`\s+`)

// Marshal returns the indented JSON representation of the document
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Filename proposes a file name for the document.
func (d *Document) Filename() string {
	name := whitespace.ReplaceAllString(d.RaceConfig.Name, "-")
	switch d.ExportType {
	case ExportIsolatedCheckpointResults:
		return fmt.Sprintf("%s-%s-checkpoint-%d.json", name, d.RaceConfig.Date, d.CheckpointNumber)
	case ExportIsolatedBaseStationResults:
		return fmt.Sprintf("%s-%s-basestation-%d.json", name, d.RaceConfig.Date, d.CheckpointNumber)
	default:
		return fmt.Sprintf("%s-%s-race-data.json", name, d.RaceConfig.Date)
	}
}

func (r *RunnerRecord) toModel(raceID int) *model.Runner {
	return &model.Runner{
		RaceID:       raceID,
		Number:       r.Number,
		Status:       r.Status,
		RecordedTime: r.RecordedTime,
		Notes:        r.Notes,
	}
}

func runnerRecord(r *model.Runner) RunnerRecord {
	return RunnerRecord{
		Number:       r.Number,
		Status:       r.Status,
		RecordedTime: r.RecordedTime,
		Notes:        r.Notes,
	}
}

func checkpointRunnerRecord(r *model.CheckpointRunner) CheckpointRunnerRecord {
	return CheckpointRunnerRecord{
		CheckpointNumber: r.CheckpointNumber,
		Number:           r.Number,
		MarkOffTime:      r.MarkOffTime,
		CallInTime:       r.CallInTime,
		Status:           r.Status,
		Notes:            r.Notes,
	}
}

func baseStationRunnerRecord(r *model.BaseStationRunner) BaseStationRunnerRecord {
	return BaseStationRunnerRecord{
		CheckpointNumber: r.CheckpointNumber,
		Number:           r.Number,
		CommonTime:       r.CommonTime,
		Status:           r.Status,
		Notes:            r.Notes,
	}
}
