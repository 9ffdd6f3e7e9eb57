package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Tuning knobs that are easier to keep together in a file than in env vars.
type YAMLConfig struct {
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Pins     PinsConfig     `yaml:"pins"`
}

// GeocoderConfig selects and tunes the geocoding backend.
type GeocoderConfig struct {
	Provider  string        `yaml:"provider"` // "nominatim" or "photon"
	BaseURL   string        `yaml:"base_url,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	CacheSize int           `yaml:"cache_size,omitempty"`
	CacheTTL  time.Duration `yaml:"cache_ttl,omitempty"`
}

// ThrottleConfig defines the cooldown windows.
type ThrottleConfig struct {
	User         time.Duration `yaml:"user,omitempty"`
	Origin       time.Duration `yaml:"origin,omitempty"`
	RateLimitMax int           `yaml:"rate_limit_max,omitempty"`
}

// PinsConfig bounds the pin store and list responses.
type PinsConfig struct {
	Max           int           `yaml:"max,omitempty"`
	DefaultList   int           `yaml:"default_list,omitempty"`
	SweepInterval time.Duration `yaml:"sweep_interval,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig decodes YAML tuning data.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply overrides c with every value set in the YAML file. Zero values leave
// the env-derived setting in place.
func (y *YAMLConfig) Apply(c *Config) {
	if y == nil {
		return
	}

	setString(&c.Geocoder, y.Geocoder.Provider)
	setString(&c.GeocoderBaseURL, y.Geocoder.BaseURL)
	setString(&c.GeocoderUserAgent, y.Geocoder.UserAgent)
	setDuration(&c.GeocodeTimeout, y.Geocoder.Timeout)
	setInt(&c.GeocodeCacheSize, y.Geocoder.CacheSize)
	setDuration(&c.GeocodeCacheTTL, y.Geocoder.CacheTTL)

	setDuration(&c.UserCooldown, y.Throttle.User)
	setDuration(&c.OriginCooldown, y.Throttle.Origin)
	setInt(&c.RateLimitMax, y.Throttle.RateLimitMax)

	setInt(&c.MaxPins, y.Pins.Max)
	setInt(&c.DefaultList, y.Pins.DefaultList)
	setDuration(&c.SweepInterval, y.Pins.SweepInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
