package main

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/influxdata/calcsheet/logging"
	"github.com/influxdata/calcsheet/sheet"
	"github.com/pkg/errors"
)

const envPrefix = "CALCSHEET"

// Config is the calcsheet configuration file.
type Config struct {
	Logging logging.Config `toml:"logging"`
	Sheet   sheet.Config   `toml:"sheet"`
}

func NewConfig() *Config {
	return &Config{
		Logging: logging.NewConfig(),
		Sheet:   sheet.NewConfig(),
	}
}

// ParseConfig reads the TOML configuration at path on top of the defaults.
// An empty path returns the defaults.
func ParseConfig(path string) (*Config, error) {
	c := NewConfig()
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %v", err)
	}
	if err := c.Sheet.Validate(); err != nil {
		return fmt.Errorf("invalid sheet config: %v", err)
	}
	return nil
}

// ApplyEnvOverrides sets fields from CALCSHEET_<SECTION>_<KEY> environment
// variables, named after the toml tags with hyphens replaced by underscores.
func (c *Config) ApplyEnvOverrides() error {
	return applyEnvOverrides(envPrefix, "", reflect.ValueOf(c))
}

func applyEnvOverrides(prefix string, fieldDesc string, spec reflect.Value) error {
	s := spec
	if spec.Kind() == reflect.Ptr {
		s = spec.Elem()
	}

	if s.Kind() == reflect.Struct {
		return applyEnvOverridesToStruct(prefix, s)
	}

	value := os.Getenv(prefix)
	if value == "" {
		return nil
	}
	if fieldDesc != "" {
		fieldDesc = " to " + fieldDesc
	}
	fail := func() error {
		return fmt.Errorf("failed to apply %v%v using type %v and value '%v'", prefix, fieldDesc, s.Type().String(), value)
	}

	switch s.Kind() {
	case reflect.String:
		s.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 0, s.Type().Bits())
		if err != nil {
			return fail()
		}
		s.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return fail()
		}
		s.SetBool(boolValue)
	}
	return nil
}

func applyEnvOverridesToStruct(prefix string, s reflect.Value) error {
	typeOfSpec := s.Type()
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.CanSet() {
			continue
		}
		configName := typeOfSpec.Field(i).Tag.Get("toml")
		// Replace hyphens with underscores to avoid issues with shells
		configName = strings.Replace(configName, "-", "_", -1)
		key := strings.ToUpper(fmt.Sprintf("%s_%s", prefix, configName))
		if err := applyEnvOverrides(key, typeOfSpec.Field(i).Name, f); err != nil {
			return err
		}
	}
	return nil
}
