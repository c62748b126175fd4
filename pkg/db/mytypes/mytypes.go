package mytypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

type (
	// we need these extra types to store the values as jsonb
	RunnerRangeSlice    []model.RunnerRange
	CheckpointInfoSlice []model.CheckpointInfo
	Metadata            map[string]any
	// RawJSON keeps a setting value as is
	RawJSON []byte
)

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("value is not []byte")
	}
}

func (h *RunnerRangeSlice) Scan(value any) error {
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, &h)
}

func (h RunnerRangeSlice) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

func (h *CheckpointInfoSlice) Scan(value any) error {
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, &h)
}

func (h CheckpointInfoSlice) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

func (h *Metadata) Scan(value any) error {
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, &h)
}

func (h Metadata) Value() (driver.Value, error) {
	if h == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(h)
}

func (h *RawJSON) Scan(value any) error {
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	*h = append((*h)[:0], bytes...)
	return nil
}

func (h RawJSON) Value() (driver.Value, error) {
	if !json.Valid(h) {
		return nil, fmt.Errorf("value is not valid json")
	}
	return []byte(h), nil
}
