package sheet

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultParseCacheSize = 1024
	DefaultPlanCacheSize  = 128
	DefaultLocation       = "UTC"
)

type Config struct {
	// ParseCacheSize is the number of parsed formulas kept, keyed by source text.
	ParseCacheSize int `toml:"parse-cache-size"`
	// PlanCacheSize is the number of evaluation plans kept, keyed by template.
	PlanCacheSize int `toml:"plan-cache-size"`
	// Location is the time zone used by date functions.
	Location string `toml:"location"`
}

func NewConfig() Config {
	return Config{
		ParseCacheSize: DefaultParseCacheSize,
		PlanCacheSize:  DefaultPlanCacheSize,
		Location:       DefaultLocation,
	}
}

func (c Config) Validate() error {
	if c.ParseCacheSize <= 0 {
		return fmt.Errorf("parse-cache-size must be positive, got %d", c.ParseCacheSize)
	}
	if c.PlanCacheSize <= 0 {
		return fmt.Errorf("plan-cache-size must be positive, got %d", c.PlanCacheSize)
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid location %q", c.Location)
	}
	return loc, nil
}
