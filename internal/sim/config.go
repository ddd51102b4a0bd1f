// Package sim feeds a running fleet API with synthetic devices and sensor
// readings so dashboards and the ask pipeline have data to chew on.
package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	APIBaseURL  string
	APIKey      string
	DeviceCount int
	Interval    time.Duration
	HTTPTimeout time.Duration
	Seed        int64
	// SpikeChance is the per-reading probability of a critical temperature
	// spike, expressed in percent.
	SpikeChance int
}

func DefaultConfig() Config {
	return Config{
		APIBaseURL:  "http://localhost:8000",
		APIKey:      "",
		DeviceCount: 5,
		Interval:    2 * time.Second,
		HTTPTimeout: 10 * time.Second,
		Seed:        time.Now().UTC().UnixNano(),
		SpikeChance: 3,
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyString(lookup, "FLEETMON_SIM_API_URL", &cfg.APIBaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FLEETMON_SIM_API_KEY", &cfg.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLEETMON_SIM_DEVICES", &cfg.DeviceCount); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLEETMON_SIM_INTERVAL", &cfg.Interval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FLEETMON_SIM_HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "FLEETMON_SIM_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FLEETMON_SIM_SPIKE_CHANCE", &cfg.SpikeChance); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return Config{}, fmt.Errorf("FLEETMON_SIM_API_URL is required")
	}
	if cfg.DeviceCount <= 0 {
		return Config{}, fmt.Errorf("FLEETMON_SIM_DEVICES must be > 0")
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("FLEETMON_SIM_INTERVAL must be > 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("FLEETMON_SIM_HTTP_TIMEOUT must be > 0")
	}
	if cfg.SpikeChance < 0 || cfg.SpikeChance > 100 {
		return Config{}, fmt.Errorf("FLEETMON_SIM_SPIKE_CHANCE must be between 0 and 100")
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return cfg, nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
