package model

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	StartTimeLayout = "15:04"

	// MaxRunners is the upper bound of runner numbers a race config may expand to
	MaxRunners = 10000
)

var ErrTooManyRunners = errors.New("too many runners")

type (
	// RunnerRange is either an inclusive interval [Min,Max] or an explicit
	// list of numbers when IsIndividual is set.
	RunnerRange struct {
		Min               int   `json:"min,omitempty"`
		Max               int   `json:"max,omitempty"`
		IsIndividual      bool  `json:"isIndividual,omitempty"`
		IndividualNumbers []int `json:"individualNumbers,omitempty"`
	}

	CheckpointInfo struct {
		Number int    `json:"number"`
		Name   string `json:"name"`
	}

	// RaceConfig holds the user supplied values of a race.
	RaceConfig struct {
		Name         string           `json:"name"`
		Date         string           `json:"date"`
		StartTime    string           `json:"startTime"`
		MinRunner    int              `json:"minRunner"`
		MaxRunner    int              `json:"maxRunner"`
		RunnerRanges []RunnerRange    `json:"runnerRanges,omitempty"`
		Checkpoints  []CheckpointInfo `json:"checkpoints,omitempty"`
	}

	Race struct {
		ID int `json:"id"`
		RaceConfig
		Metadata  map[string]any `json:"metadata,omitempty"`
		CreatedAt time.Time      `json:"createdAt"`
	}

	Runner struct {
		ID           int        `json:"id"`
		RaceID       int        `json:"raceId"`
		Number       int        `json:"number"`
		Status       Status     `json:"status"`
		RecordedTime *time.Time `json:"recordedTime"`
		Notes        *string    `json:"notes"`
	}

	Checkpoint struct {
		ID     int    `json:"id"`
		RaceID int    `json:"raceId"`
		Number int    `json:"number"`
		Name   string `json:"name"`
	}

	// CheckpointRunner is the per checkpoint shadow of a runner
	CheckpointRunner struct {
		ID               int        `json:"id"`
		RaceID           int        `json:"raceId"`
		CheckpointNumber int        `json:"checkpointNumber"`
		Number           int        `json:"number"`
		Status           Status     `json:"status"`
		CallInTime       *time.Time `json:"callInTime"`
		MarkOffTime      *time.Time `json:"markOffTime"`
		Notes            *string    `json:"notes"`
	}

	// BaseStationRunner is the per base station shadow of a runner
	BaseStationRunner struct {
		ID               int        `json:"id"`
		RaceID           int        `json:"raceId"`
		CheckpointNumber int        `json:"checkpointNumber"`
		Number           int        `json:"number"`
		Status           Status     `json:"status"`
		CommonTime       *time.Time `json:"commonTime"`
		Notes            *string    `json:"notes"`
	}

	Setting struct {
		Key   string `json:"key"`
		Value []byte `json:"value"`
	}

	// ShadowKey identifies a shadow row within a race
	ShadowKey struct {
		RaceID           int
		CheckpointNumber int
		Number           int
	}
)

// Numbers expands the range into runner numbers.
func (r RunnerRange) Numbers() []int {
	if r.IsIndividual {
		ret := make([]int, len(r.IndividualNumbers))
		copy(ret, r.IndividualNumbers)
		return ret
	}
	if r.Max < r.Min {
		return []int{}
	}
	ret := make([]int, 0, r.Max-r.Min+1)
	for i := r.Min; i <= r.Max; i++ {
		ret = append(ret, i)
	}
	return ret
}

// count returns the number of runner numbers described by r.
// ok is false if the count exceeds MaxRunners.
func (r RunnerRange) count() (n int, ok bool) {
	if r.IsIndividual {
		return len(r.IndividualNumbers), len(r.IndividualNumbers) <= MaxRunners
	}
	if r.Max < r.Min {
		return 0, true
	}
	span := r.Max - r.Min // negative on overflow
	if span < 0 || span >= MaxRunners {
		return 0, false
	}
	return span + 1, true
}

// CheckRunnerCount returns ErrTooManyRunners if the config expands to more
// than MaxRunners runner numbers. RunnerNumbers must only be called on
// configs passing this check.
func (c *RaceConfig) CheckRunnerCount() error {
	total := 0
	for _, r := range c.ranges() {
		n, ok := r.count()
		if !ok || n > MaxRunners-total {
			return fmt.Errorf("%w: at most %d runners are supported", ErrTooManyRunners, MaxRunners)
		}
		total += n
	}
	return nil
}

func (c *RaceConfig) ranges() []RunnerRange {
	if len(c.RunnerRanges) == 0 {
		return []RunnerRange{{Min: c.MinRunner, Max: c.MaxRunner}}
	}
	return c.RunnerRanges
}

// RunnerNumbers returns the distinct runner numbers of the config in the order
// of their first appearance. Without ranges MinRunner..MaxRunner is used.
func (c *RaceConfig) RunnerNumbers() []int {
	seen := map[int]struct{}{}
	ret := []int{}
	for _, r := range c.ranges() {
		for _, n := range r.Numbers() {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			ret = append(ret, n)
		}
	}
	return ret
}

// StartsAt combines Date and StartTime in loc.
func (c *RaceConfig) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	layout := DateLayout + " " + StartTimeLayout
	if len(c.StartTime) > len(StartTimeLayout) {
		layout += ":05"
	}
	return time.ParseInLocation(layout, c.Date+" "+c.StartTime, loc)
}

func (k ShadowKey) OfCheckpointRunner(r *CheckpointRunner) bool {
	return r.RaceID == k.RaceID && r.CheckpointNumber == k.CheckpointNumber &&
		r.Number == k.Number
}

func (k ShadowKey) OfBaseStationRunner(r *BaseStationRunner) bool {
	return r.RaceID == k.RaceID && r.CheckpointNumber == k.CheckpointNumber &&
		r.Number == k.Number
}

func NewRunner(raceID, number int) *Runner {
	return &Runner{RaceID: raceID, Number: number, Status: StatusNotStarted}
}

func NewCheckpointRunner(key ShadowKey) *CheckpointRunner {
	return &CheckpointRunner{
		RaceID:           key.RaceID,
		CheckpointNumber: key.CheckpointNumber,
		Number:           key.Number,
		Status:           StatusNotStarted,
	}
}

func NewBaseStationRunner(key ShadowKey) *BaseStationRunner {
	return &BaseStationRunner{
		RaceID:           key.RaceID,
		CheckpointNumber: key.CheckpointNumber,
		Number:           key.Number,
		Status:           StatusNotStarted,
	}
}
