package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const timeFormat = "15:04:05"

// ParseNumbers accepts runner numbers like "3", "1-5" or "2,4,7-9".
// The result keeps the order of the input without duplicates.
func ParseNumbers(args []string) ([]int, error) {
	ret := []int{}
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			from, to, isRange := strings.Cut(part, "-")
			lower, err := strconv.Atoi(from)
			if err != nil {
				return nil, fmt.Errorf("invalid runner number %q", part)
			}
			upper := lower
			if isRange {
				if upper, err = strconv.Atoi(to); err != nil || upper < lower {
					return nil, fmt.Errorf("invalid runner range %q", part)
				}
			}
			for n := lower; n <= upper; n++ {
				ret = append(ret, n)
			}
		}
	}
	return lo.Uniq(ret), nil
}

// ParseTime accepts RFC3339 timestamps or a time of day (15:04 or 15:04:05)
// which is combined with the date of now. An empty value returns nil.
func ParseTime(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	for _, layout := range []string{timeFormat, "15:04"} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			ret := time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, now.Location())
			return &ret, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q", s)
}

// FormatTime renders an optional timestamp as time of day in loc
func FormatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(timeFormat)
}

func FormatNotes(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}
