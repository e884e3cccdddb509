package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsentry/tripsentry/internal/api/models"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := models.Timestamp(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC))

	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-01T10:30:00Z"`, string(raw))

	var parsed models.Timestamp
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, ts.Time().Equal(parsed.Time()))
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_UnmarshalRejectsNonString(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"number", `5`},
		{"short number", `1756712345`},
		{"boolean", `true`},
		{"object", `{}`},
		{"empty string token", `"`},
		{"unquoted word", `tomorrow`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts models.Timestamp
			err := ts.UnmarshalJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestTimestamp_UnmarshalRejectsNonRFC3339String(t *testing.T) {
	var ts models.Timestamp
	err := json.Unmarshal([]byte(`"01-09-2026 10:30"`), &ts)
	assert.Error(t, err)
}
