package model

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
)

// Setters describe partial updates. Unset fields are left untouched,
// null values clear nullable columns.
type (
	RunnerSetter struct {
		Status       omit.Val[Status]
		RecordedTime omitnull.Val[time.Time]
		Notes        omitnull.Val[string]
	}

	CheckpointRunnerSetter struct {
		Status      omit.Val[Status]
		CallInTime  omitnull.Val[time.Time]
		MarkOffTime omitnull.Val[time.Time]
		Notes       omitnull.Val[string]
	}

	BaseStationRunnerSetter struct {
		Status     omit.Val[Status]
		CommonTime omitnull.Val[time.Time]
		Notes      omitnull.Val[string]
	}
)

func (s RunnerSetter) IsEmpty() bool {
	return s.Status.IsUnset() && s.RecordedTime.IsUnset() && s.Notes.IsUnset()
}

func (s RunnerSetter) Apply(r *Runner) {
	if v, ok := s.Status.Get(); ok {
		r.Status = v
	}
	if !s.RecordedTime.IsUnset() {
		r.RecordedTime = s.RecordedTime.MustPtr()
	}
	if !s.Notes.IsUnset() {
		r.Notes = s.Notes.MustPtr()
	}
}

func (s CheckpointRunnerSetter) IsEmpty() bool {
	return s.Status.IsUnset() && s.CallInTime.IsUnset() &&
		s.MarkOffTime.IsUnset() && s.Notes.IsUnset()
}

func (s CheckpointRunnerSetter) Apply(r *CheckpointRunner) {
	if v, ok := s.Status.Get(); ok {
		r.Status = v
	}
	if !s.CallInTime.IsUnset() {
		r.CallInTime = s.CallInTime.MustPtr()
	}
	if !s.MarkOffTime.IsUnset() {
		r.MarkOffTime = s.MarkOffTime.MustPtr()
	}
	if !s.Notes.IsUnset() {
		r.Notes = s.Notes.MustPtr()
	}
}

func (s BaseStationRunnerSetter) IsEmpty() bool {
	return s.Status.IsUnset() && s.CommonTime.IsUnset() && s.Notes.IsUnset()
}

func (s BaseStationRunnerSetter) Apply(r *BaseStationRunner) {
	if v, ok := s.Status.Get(); ok {
		r.Status = v
	}
	if !s.CommonTime.IsUnset() {
		r.CommonTime = s.CommonTime.MustPtr()
	}
	if !s.Notes.IsUnset() {
		r.Notes = s.Notes.MustPtr()
	}
}
