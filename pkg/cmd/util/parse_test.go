package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{"single", []string{"3"}, []int{3}, false},
		{"range", []string{"1-3"}, []int{1, 2, 3}, false},
		{"mixed", []string{"2,4,7-8", "10"}, []int{2, 4, 7, 8, 10}, false},
		{"duplicates", []string{"1-3", "2"}, []int{1, 2, 3}, false},
		{"empty parts", []string{"1,,2"}, []int{1, 2}, false},
		{"reversed range", []string{"5-3"}, nil, true},
		{"not a number", []string{"x"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumbers(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2024, 4, 28, 12, 0, 0, 0, loc)

	got, err := ParseTime("", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseTime("09:15", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 4, 28, 9, 15, 0, 0, loc).Equal(*got))

	got, err = ParseTime("09:15:30", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 4, 28, 9, 15, 30, 0, loc).Equal(*got))

	got, err = ParseTime("2024-04-28T07:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 4, 28, 7, 0, 0, 0, time.UTC).Equal(*got))

	_, err = ParseTime("noon", now)
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 4, 28, 7, 0, 5, 0, time.UTC)
	assert.Equal(t, "", FormatTime(nil, time.UTC))
	assert.Equal(t, "09:00:05", FormatTime(&ts, time.FixedZone("x", 2*3600)))
}
