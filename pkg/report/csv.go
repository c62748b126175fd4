// Package report renders race results for the race director.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

const MimeTypeCSV = "text/csv"

var header = []string{
	"Runner Number", "Status", "Recorded Time", "Time from Start", "Notes",
}

var whitespace = regexp.MustCompile(`\s+`)

type Result struct {
	Content  []byte
	Filename string
	MimeType string
}

type Option func(*generator)

// WithClock sets the source of the export timestamp
func WithClock(clock func() time.Time) Option {
	return func(g *generator) {
		g.clock = clock
	}
}

// WithLocation sets the time zone in which the race start is interpreted
func WithLocation(loc *time.Location) Option {
	return func(g *generator) {
		g.loc = loc
	}
}

type generator struct {
	clock func() time.Time
	loc   *time.Location
}

// GenerateCSV creates the results file of a race.
// Rows are ordered by runner number. The time from start is only computed
// for runners who passed and have a recorded time not before the start.
func GenerateCSV(cfg model.RaceConfig, runners []*model.Runner, opts ...Option) (
	*Result, error,
) {
	g := &generator{clock: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(g)
	}
	start, startErr := cfg.StartsAt(g.loc)

	sorted := slices.Clone(runners)
	slices.SortStableFunc(sorted, func(a, b *model.Runner) int {
		return a.Number - b.Number
	})

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "# Race: %s\n", cfg.Name)
	fmt.Fprintf(buf, "# Date: %s\n", cfg.Date)
	fmt.Fprintf(buf, "# Start Time: %s\n", cfg.StartTime)
	fmt.Fprintf(buf, "# Exported: %s\n", g.clock().Format(time.RFC3339))
	buf.WriteString("\n")

	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range sorted {
		recorded, elapsed := "", ""
		if r.RecordedTime != nil {
			recorded = r.RecordedTime.In(g.loc).Format(time.RFC3339)
			if r.Status == model.StatusPassed && startErr == nil {
				elapsed = formatElapsed(r.RecordedTime.Sub(start))
			}
		}
		notes := ""
		if r.Notes != nil {
			notes = *r.Notes
		}
		if err := w.Write([]string{
			fmt.Sprint(r.Number), r.Status.String(), recorded, elapsed, notes,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &Result{
		Content:  buf.Bytes(),
		Filename: Filename(cfg),
		MimeType: MimeTypeCSV,
	}, nil
}

// Filename returns the name of the results file for the race
func Filename(cfg model.RaceConfig) string {
	return fmt.Sprintf("%s-%s-results.csv", whitespace.ReplaceAllString(cfg.Name, "-"), cfg.Date)
}

// negative durations yield an empty string
func formatElapsed(d time.Duration) string {
	if d < 0 {
		return ""
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
