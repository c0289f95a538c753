package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // time zones resolve without system tzdata

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// Defaults applied when a Config field is left unset.
const (
	DefaultLimit              = 5
	DefaultDurationMinutes    = 30
	DefaultStartOffsetMinutes = 5
	DefaultTimeZone           = "UTC"
	DefaultBodyContentType    = "HTML"
	DefaultBodyContent        = "Created from graphcal."
	DefaultLocationName       = "Online"
)

// Config holds event service configuration.
// It maps onto the [calendar] section of the config file.
type Config struct {
	// DefaultLimit is used when ListUpcomingEvents is called with limit 0.
	DefaultLimit int `toml:"default_limit"`
	// DefaultDuration is used when CreateEvent is called with 0 minutes.
	DefaultDuration int `toml:"default_duration_minutes"`
	// StartOffset is how far from now a created event starts, in minutes.
	// Nil means DefaultStartOffsetMinutes; 0 starts events now.
	StartOffset *int `toml:"start_offset_minutes,omitempty"`
	// TimeZone labels the start and end of created events.
	TimeZone        string `toml:"time_zone"`
	BodyContentType string `toml:"body_content_type"`
	BodyContent     string `toml:"body_content"`
	LocationName    string `toml:"location"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    DefaultLimit,
		DefaultDuration: DefaultDurationMinutes,
		StartOffset:     minutes(DefaultStartOffsetMinutes),
		TimeZone:        DefaultTimeZone,
		BodyContentType: DefaultBodyContentType,
		BodyContent:     DefaultBodyContent,
		LocationName:    DefaultLocationName,
	}
}

// WithDefaults returns a copy of c with unset fields filled from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.DefaultLimit == 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.DefaultDuration == 0 {
		c.DefaultDuration = d.DefaultDuration
	}
	if c.StartOffset == nil {
		c.StartOffset = d.StartOffset
	}
	if c.TimeZone == "" {
		c.TimeZone = d.TimeZone
	}
	if c.BodyContentType == "" {
		c.BodyContentType = d.BodyContentType
	}
	if c.BodyContent == "" {
		c.BodyContent = d.BodyContent
	}
	if c.LocationName == "" {
		c.LocationName = d.LocationName
	}
	return c
}

// Validate rejects negative limits and durations.
func (c Config) Validate() error {
	if c.DefaultLimit < 0 {
		return fmt.Errorf("%w: calendar default_limit must be positive, got %d", domain.ErrConfig, c.DefaultLimit)
	}
	if c.DefaultDuration < 0 {
		return fmt.Errorf("%w: calendar default_duration_minutes must be positive, got %d",
			domain.ErrConfig, c.DefaultDuration)
	}
	if c.StartOffset != nil && *c.StartOffset < 0 {
		return fmt.Errorf("%w: calendar start_offset_minutes must not be negative, got %d",
			domain.ErrConfig, *c.StartOffset)
	}
	if _, err := time.LoadLocation(c.TimeZone); c.TimeZone != "" && err != nil {
		return fmt.Errorf("%w: unknown calendar time_zone %q", domain.ErrConfig, c.TimeZone)
	}
	return nil
}

func (c Config) startOffset() time.Duration {
	if c.StartOffset == nil {
		return DefaultStartOffsetMinutes * time.Minute
	}
	return time.Duration(*c.StartOffset) * time.Minute
}

func minutes(n int) *int {
	return &n
}
