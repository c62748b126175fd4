package race

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

// GetSetting returns the stored JSON value of key or defaultValue if the
// key was never saved.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Service) GetSetting(
	ctx context.Context,
	key string,
	defaultValue json.RawMessage,
) (json.RawMessage, error) {
	setting, err := s.repos.Setting().Load(ctx, key)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return defaultValue, nil
		}
		s.log.Error("Error loading setting", log.String("key", key), log.ErrorField(err))
		return nil, ErrSetting
	}
	return setting.Value, nil
}

// SaveSetting stores value under key. value must be valid JSON.
func (s *Service) SaveSetting(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		s.log.Warn("Rejecting setting with invalid JSON", log.String("key", key))
		return ErrSetting
	}
	if err := s.repos.Setting().Save(ctx, key, value); err != nil {
		s.log.Error("Error saving setting", log.String("key", key), log.ErrorField(err))
		return ErrSetting
	}
	return nil
}
