//nolint:funlen // ok for this test code
package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    Status
		b    Status
		want int
	}{
		{"equal", StatusPassed, StatusPassed, 0},
		{"passed over not-started", StatusPassed, StatusNotStarted, 1},
		{"dnf over passed", StatusDNF, StatusPassed, 1},
		{"non-starter over dnf", StatusNonStarter, StatusDNF, 1},
		{"not-started below all", StatusNotStarted, StatusNonStarter, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestStatusText(t *testing.T) {
	var s Status
	assert.NoError(t, json.Unmarshal([]byte(`"dnf"`), &s))
	assert.Equal(t, StatusDNF, s)
	assert.Error(t, json.Unmarshal([]byte(`"finished"`), &s))
	_, err := json.Marshal(Status("bogus"))
	assert.Error(t, err)
	assert.Equal(t, -1, Status("bogus").Priority())
}

func TestRunnerNumbers(t *testing.T) {
	tests := []struct {
		name string
		cfg  RaceConfig
		want []int
	}{
		{
			name: "fallback to min max",
			cfg:  RaceConfig{MinRunner: 3, MaxRunner: 6},
			want: []int{3, 4, 5, 6},
		},
		{
			name: "range and individual",
			cfg: RaceConfig{RunnerRanges: []RunnerRange{
				{Min: 1, Max: 3},
				{IsIndividual: true, IndividualNumbers: []int{10, 12}},
			}},
			want: []int{1, 2, 3, 10, 12},
		},
		{
			name: "duplicates collapse",
			cfg: RaceConfig{RunnerRanges: []RunnerRange{
				{Min: 1, Max: 3},
				{IsIndividual: true, IndividualNumbers: []int{2, 4}},
			}},
			want: []int{1, 2, 3, 4},
		},
		{
			name: "inverted range is empty",
			cfg:  RaceConfig{RunnerRanges: []RunnerRange{{Min: 5, Max: 4}}},
			want: []int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.cfg.RunnerNumbers()); diff != "" {
				t.Errorf("RunnerNumbers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStartsAt(t *testing.T) {
	cfg := RaceConfig{Date: "2024-05-01", StartTime: "07:30"}
	got, err := cfg.StartsAt(time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC), got)

	cfg.StartTime = "07:30:15"
	got, err = cfg.StartsAt(time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 30, 15, 0, time.UTC), got)

	cfg.StartTime = "late"
	_, err = cfg.StartsAt(time.UTC)
	assert.Error(t, err)
}

func TestRunnerSetterApply(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	note := "blister"
	r := Runner{Number: 1, Status: StatusNotStarted, Notes: &note}

	assert.True(t, RunnerSetter{}.IsEmpty())
	RunnerSetter{}.Apply(&r)
	assert.Equal(t, &note, r.Notes)

	s := RunnerSetter{
		Status:       omit.From(StatusPassed),
		RecordedTime: omitnull.From(ts),
		Notes:        omitnull.FromPtr[string](nil),
	}
	assert.False(t, s.IsEmpty())
	s.Apply(&r)
	assert.Equal(t, StatusPassed, r.Status)
	assert.Equal(t, ts, *r.RecordedTime)
	assert.Nil(t, r.Notes)
}

func TestShadowSetterApply(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	key := ShadowKey{RaceID: 1, CheckpointNumber: 2, Number: 7}

	cr := NewCheckpointRunner(key)
	CheckpointRunnerSetter{
		Status:      omit.From(StatusDNF),
		MarkOffTime: omitnull.From(ts),
	}.Apply(cr)
	assert.True(t, key.OfCheckpointRunner(cr))
	assert.Equal(t, StatusDNF, cr.Status)
	assert.Equal(t, ts, *cr.MarkOffTime)
	assert.Nil(t, cr.CallInTime)

	br := NewBaseStationRunner(key)
	BaseStationRunnerSetter{CommonTime: omitnull.From(ts)}.Apply(br)
	assert.True(t, key.OfBaseStationRunner(br))
	assert.Equal(t, StatusNotStarted, br.Status)
	assert.Equal(t, ts, *br.CommonTime)
}

func TestCheckRunnerCount(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RaceConfig
		wantErr bool
	}{
		{"min max", RaceConfig{MinRunner: 1, MaxRunner: MaxRunners}, false},
		{"empty range", RaceConfig{MinRunner: 5, MaxRunner: 1}, false},
		{"min max too large", RaceConfig{MinRunner: 0, MaxRunner: MaxRunners}, true},
		{"huge max", RaceConfig{MinRunner: 0, MaxRunner: 1_000_000_000_000_000}, true},
		{"overflowing span", RaceConfig{MinRunner: math.MinInt, MaxRunner: math.MaxInt}, true},
		{
			"ranges ignore min max",
			RaceConfig{MinRunner: 0, MaxRunner: math.MaxInt, RunnerRanges: []RunnerRange{
				{Min: 1, Max: 10},
			}},
			false,
		},
		{
			"oversized range entry",
			RaceConfig{RunnerRanges: []RunnerRange{{Min: 1, Max: 3}, {Min: 0, Max: 1 << 40}}},
			true,
		},
		{
			"ranges summing above limit",
			RaceConfig{RunnerRanges: []RunnerRange{
				{Min: 1, Max: MaxRunners / 2},
				{Min: 1, Max: MaxRunners/2 + 1},
			}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CheckRunnerCount()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTooManyRunners)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetterClearsNullableFields(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	note := "late"
	key := ShadowKey{RaceID: 1, CheckpointNumber: 1, Number: 3}

	cr := NewCheckpointRunner(key)
	cr.CallInTime, cr.MarkOffTime, cr.Notes = &ts, &ts, &note
	CheckpointRunnerSetter{
		CallInTime:  omitnull.FromPtr[time.Time](nil),
		MarkOffTime: omitnull.FromPtr[time.Time](nil),
		Notes:       omitnull.FromPtr[string](nil),
	}.Apply(cr)
	assert.Nil(t, cr.CallInTime)
	assert.Nil(t, cr.MarkOffTime)
	assert.Nil(t, cr.Notes)

	br := NewBaseStationRunner(key)
	br.CommonTime, br.Notes = &ts, &note
	BaseStationRunnerSetter{
		CommonTime: omitnull.FromPtr[time.Time](nil),
		Notes:      omitnull.From("moved"),
	}.Apply(br)
	assert.Nil(t, br.CommonTime)
	assert.Equal(t, "moved", *br.Notes)
}
