// Package merge contains the field level rules used when an exported race
// is imported on top of an existing copy of the same race.
package merge

import (
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

const notesSeparator = " | "

// ResolveStatus returns the imported status if it outranks the existing one.
// The second return value reports whether the status changes.
func ResolveStatus(existing, imported model.Status) (model.Status, bool) {
	if model.Compare(imported, existing) > 0 {
		return imported, true
	}
	return existing, false
}

// ResolveRecordedTime keeps the later of both timestamps.
// A missing imported time never clears an existing one.
func ResolveRecordedTime(existing, imported *time.Time) (*time.Time, bool) {
	if imported == nil {
		return existing, false
	}
	if existing == nil || imported.After(*existing) {
		return imported, true
	}
	return existing, false
}

// ResolveNotes appends imported notes to the existing ones.
// Notes already contained as the last entry are not added again.
func ResolveNotes(existing, imported *string) (*string, bool) {
	if imported == nil || *imported == "" {
		return existing, false
	}
	if existing == nil || *existing == "" {
		v := *imported
		return &v, true
	}
	if *existing == *imported || strings.HasSuffix(*existing, notesSeparator+*imported) {
		return existing, false
	}
	v := *existing + notesSeparator + *imported
	return &v, true
}

// ResolveRunner compares both versions of a runner and returns a setter
// holding only the fields that change. An empty setter means nothing to do.
func ResolveRunner(existing, imported *model.Runner) model.RunnerSetter {
	ret := model.RunnerSetter{}
	if v, changed := ResolveStatus(existing.Status, imported.Status); changed {
		ret.Status = omit.From(v)
	}
	if v, changed := ResolveRecordedTime(existing.RecordedTime, imported.RecordedTime); changed {
		ret.RecordedTime = omitnull.FromPtr(v)
	}
	if v, changed := ResolveNotes(existing.Notes, imported.Notes); changed {
		ret.Notes = omitnull.FromPtr(v)
	}
	return ret
}

// Fresh returns a setter with every non default field of imported.
// Used when the imported data lands in a newly created race.
func Fresh(imported *model.Runner) model.RunnerSetter {
	ret := model.RunnerSetter{}
	if imported.Status != model.StatusNotStarted && imported.Status.Valid() {
		ret.Status = omit.From(imported.Status)
	}
	if imported.RecordedTime != nil {
		ret.RecordedTime = omitnull.FromPtr(imported.RecordedTime)
	}
	if imported.Notes != nil && *imported.Notes != "" {
		ret.Notes = omitnull.FromPtr(imported.Notes)
	}
	return ret
}
