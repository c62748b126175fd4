package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"golang.org/x/mod/semver"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

// ValidationError reports an import document that cannot be processed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid import data: %s: %s", e.Field, e.Reason)
}

var (
	requiredStrings = []string{"name", "date", "startTime"}
	requiredNumbers = []string{"minRunner", "maxRunner"}
	raceConfigRoot  = jp.MustParseString("$.raceConfig")
	versionPath     = jp.MustParseString("$.version")
	exportTypePath  = jp.MustParseString("$.exportType")
)

func raceConfigPath(field string) jp.Expr {
	return jp.MustParseString("$.raceConfig." + field)
}

// validate checks the raw document before it is decoded.
func validate(raw []byte) error {
	obj, err := oj.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "document", Reason: "invalid JSON: " + err.Error()}
	}
	if _, ok := obj.(map[string]any); !ok {
		return &ValidationError{Field: "document", Reason: "not a JSON object"}
	}
	if _, ok := raceConfigRoot.First(obj).(map[string]any); !ok {
		return &ValidationError{Field: "raceConfig", Reason: "missing"}
	}
	for _, f := range requiredStrings {
		v, ok := raceConfigPath(f).First(obj).(string)
		if !ok || v == "" {
			return &ValidationError{Field: "raceConfig." + f, Reason: "must be a non-empty string"}
		}
		if f == "date" {
			if _, err := time.Parse(model.DateLayout, v); err != nil {
				return &ValidationError{Field: "raceConfig.date", Reason: "expected YYYY-MM-DD"}
			}
		}
	}
	for _, f := range requiredNumbers {
		switch raceConfigPath(f).First(obj).(type) {
		case int64, float64:
		default:
			return &ValidationError{Field: "raceConfig." + f, Reason: "must be a number"}
		}
	}
	if v, ok := versionPath.First(obj).(string); ok {
		if err := checkVersion(v); err != nil {
			return err
		}
	}
	if t := exportTypePath.First(obj); t != nil {
		s, ok := t.(string)
		if !ok || (s != "" && !ExportType(s).Valid()) {
			return &ValidationError{Field: "exportType", Reason: fmt.Sprintf("unknown type %v", t)}
		}
	}
	return nil
}

// checkVersion rejects documents written by a newer major version.
// Missing or unparsable versions come from older exports and are accepted.
func checkVersion(v string) error {
	check := v
	if !strings.HasPrefix(check, "v") {
		check = "v" + check
	}
	if !semver.IsValid(check) {
		return nil
	}
	if semver.Compare(semver.Major(check), semver.Major("v"+DocumentVersion)) > 0 {
		return &ValidationError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported document version %s", v),
		}
	}
	return nil
}
