package model

import (
	"fmt"
)

// Status is the tracking state of a runner. The values are ordered, a status
// with a higher priority wins when two records are reconciled.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusPassed     Status = "passed"
	StatusDNF        Status = "dnf"
	StatusNonStarter Status = "non-starter"
)

var statusPriority = map[Status]int{
	StatusNotStarted: 0,
	StatusPassed:     1,
	StatusDNF:        2,
	StatusNonStarter: 3,
}

// AllStatuses returns the statuses in ascending priority
func AllStatuses() []Status {
	return []Status{StatusNotStarted, StatusPassed, StatusDNF, StatusNonStarter}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := statusPriority[s]
	return ok
}

// Priority returns the rank of s. Unknown values rank below not-started.
func (s Status) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return -1
}

func (s Status) String() string {
	return string(s)
}

// Compare returns -1, 0 or 1 if a has lower, equal or higher priority than b.
func Compare(a, b Status) int {
	pa, pb := a.Priority(), b.Priority()
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %q", string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	st, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
