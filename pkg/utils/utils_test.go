package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, id, idLength)

	other, err := GenerateID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, idLength)
	assert.NotEqual(t, id, NewID())
}

func TestDaysInRange(t *testing.T) {
	start := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	days := DaysInRange(start, end)

	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-30", days[0].Format(time.DateOnly))
	assert.Equal(t, "2024-02-01", days[2].Format(time.DateOnly))
	assert.Empty(t, DaysInRange(end, start))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.0, Round(0, 2))
	assert.Equal(t, 12.35, Round(12.346, 2))
	assert.Equal(t, 80000.0, Round(79999.999, 2))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, 1.23456, Round(1.23456, -1))
}

func TestPrettyJson(t *testing.T) {
	out := PrettyJson(map[string]any{"status": "approved"})
	assert.Contains(t, out, "\"status\": \"approved\"")

	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJson([]byte(`{"a":1}`)))
	assert.Equal(t, "not json", PrettyJson([]byte("not json")))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250 µs", FormatDuration(250*time.Microsecond))
	assert.Equal(t, "120 ms", FormatDuration(120*time.Millisecond))
	assert.Equal(t, "1.50 s", FormatDuration(1500*time.Millisecond))
}
