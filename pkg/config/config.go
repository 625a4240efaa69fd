package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/journeyplanner/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxWait                     = 25
	defaultQueryInterval               = 6
	defaultMaxChanges                  = 5
	defaultMaxJourneyDuration          = 124
	defaultMaxNumResults               = 5
	defaultNumOfNearestStopsForWalking = 3
	defaultNearestStopRangeKM          = 1.6
	defaultWalkingMPH                  = 3.0
	defaultMaxPathLength               = 400
	defaultCacheExpiry                 = "PT90M"
)

// Config holds the journey planning limits. Times are in minutes unless stated.
type Config struct {
	MaxWait                     int     `yaml:"maxWait" validate:"min=1,max=240"`
	QueryInterval               int     `yaml:"queryInterval" validate:"min=1,ltefield=MaxWait"`
	MaxChanges                  int     `yaml:"maxChanges" validate:"min=0,max=20"`
	MaxJourneyDuration          int     `yaml:"maxJourneyDuration" validate:"min=1"`
	MaxNumResults               int     `yaml:"maxNumResults" validate:"min=1"`
	NumOfNearestStopsForWalking int     `yaml:"numOfNearestStopsForWalking" validate:"min=1"`
	NearestStopRangeKM          float64 `yaml:"nearestStopRangeKM" validate:"gt=0"`
	WalkingMPH                  float64 `yaml:"walkingMPH" validate:"gt=0"`
	EdgePerTrip                 bool    `yaml:"edgePerTrip"`
	MaxPathLength               int     `yaml:"maxPathLength" validate:"min=1"`

	// CacheExpiry is an ISO 8601 duration, eg PT90M
	CacheExpiry string `yaml:"cacheExpiry" validate:"required"`
}

func Default() Config {
	return Config{
		MaxWait:                     defaultMaxWait,
		QueryInterval:               defaultQueryInterval,
		MaxChanges:                  defaultMaxChanges,
		MaxJourneyDuration:          defaultMaxJourneyDuration,
		MaxNumResults:               defaultMaxNumResults,
		NumOfNearestStopsForWalking: defaultNumOfNearestStopsForWalking,
		NearestStopRangeKM:          defaultNearestStopRangeKM,
		WalkingMPH:                  defaultWalkingMPH,
		EdgePerTrip:                 true,
		MaxPathLength:               defaultMaxPathLength,
		CacheExpiry:                 defaultCacheExpiry,
	}
}

// Load builds the config from defaults, the optional TRAVIGO_CONFIG_FILE and then
// TRAVIGO_* environment overrides
func Load() (Config, error) {
	env := util.GetEnvironmentVariables()
	cfg := Default()

	if path := env["TRAVIGO_CONFIG_FILE"]; path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
		log.Debug().Str("path", path).Msg("Loaded config file")
	}

	if err := cfg.ApplyEnvironment(env); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	return nil
}

func (c *Config) ApplyEnvironment(env map[string]string) error {
	ints := map[string]*int{
		"TRAVIGO_MAX_WAIT":             &c.MaxWait,
		"TRAVIGO_QUERY_INTERVAL":       &c.QueryInterval,
		"TRAVIGO_MAX_CHANGES":          &c.MaxChanges,
		"TRAVIGO_MAX_JOURNEY_DURATION": &c.MaxJourneyDuration,
		"TRAVIGO_MAX_RESULTS":          &c.MaxNumResults,
		"TRAVIGO_NEAREST_STOPS":        &c.NumOfNearestStopsForWalking,
		"TRAVIGO_MAX_PATH_LENGTH":      &c.MaxPathLength,
	}
	for key, field := range ints {
		value, err := util.GetEnvironmentInt(env, key, *field)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field = value
	}

	floats := map[string]*float64{
		"TRAVIGO_NEAREST_STOP_RANGE_KM": &c.NearestStopRangeKM,
		"TRAVIGO_WALKING_MPH":           &c.WalkingMPH,
	}
	for key, field := range floats {
		if env[key] == "" {
			continue
		}

		value, err := strconv.ParseFloat(env[key], 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field = value
	}

	c.EdgePerTrip = util.GetEnvironmentBool(env, "TRAVIGO_EDGE_PER_TRIP", c.EdgePerTrip)
	c.CacheExpiry = util.GetEnvironmentString(env, "TRAVIGO_CACHE_EXPIRY", c.CacheExpiry)

	return nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := c.CacheExpiryDuration(); err != nil {
		return err
	}

	return nil
}

func (c Config) CacheExpiryDuration() (time.Duration, error) {
	duration, err := iso8601.ParseISO8601(c.CacheExpiry)
	if err != nil {
		return 0, fmt.Errorf("cache expiry %q: %w", c.CacheExpiry, err)
	}

	reference := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	return duration.Shift(reference).Sub(reference), nil
}
