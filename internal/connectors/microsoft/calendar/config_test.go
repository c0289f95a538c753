package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.DefaultLimit)
	assert.Equal(t, 30, cfg.DefaultDuration)
	require.NotNil(t, cfg.StartOffset)
	assert.Equal(t, 5, *cfg.StartOffset)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{DefaultLimit: 10, LocationName: "Room 4"}.WithDefaults()

	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, "Room 4", cfg.LocationName)
	assert.Equal(t, DefaultDurationMinutes, cfg.DefaultDuration)
	assert.Equal(t, DefaultTimeZone, cfg.TimeZone)
	assert.Equal(t, DefaultBodyContentType, cfg.BodyContentType)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "negative limit", cfg: Config{DefaultLimit: -1}},
		{name: "negative duration", cfg: Config{DefaultDuration: -5}},
		{name: "negative offset", cfg: Config{StartOffset: minutes(-1)}},
		{name: "unknown time zone", cfg: Config{TimeZone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), domain.ErrConfig)
		})
	}
}

func TestConfig_WithDefaults_StartOffset(t *testing.T) {
	unset := Config{}.WithDefaults()
	require.NotNil(t, unset.StartOffset)
	assert.Equal(t, DefaultStartOffsetMinutes, *unset.StartOffset)

	zero := Config{StartOffset: minutes(0)}.WithDefaults()
	require.NotNil(t, zero.StartOffset)
	assert.Equal(t, 0, *zero.StartOffset)
	assert.NoError(t, zero.Validate())
}
