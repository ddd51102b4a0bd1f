package sim

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.DeviceCount != 5 {
		t.Fatalf("DeviceCount = %d", cfg.DeviceCount)
	}
	if cfg.Interval != 2*time.Second {
		t.Fatalf("Interval = %s", cfg.Interval)
	}
	if cfg.SpikeChance != 3 {
		t.Fatalf("SpikeChance = %d", cfg.SpikeChance)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(map[string]string{
		"FLEETMON_SIM_API_URL":      "http://fleet.local:18000/",
		"FLEETMON_SIM_API_KEY":      "k1",
		"FLEETMON_SIM_DEVICES":      "12",
		"FLEETMON_SIM_INTERVAL":     "500ms",
		"FLEETMON_SIM_HTTP_TIMEOUT": "30s",
		"FLEETMON_SIM_SEED":         "99",
		"FLEETMON_SIM_SPIKE_CHANCE": "10",
	}))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.APIBaseURL != "http://fleet.local:18000" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIKey != "k1" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	if cfg.DeviceCount != 12 {
		t.Fatalf("DeviceCount = %d", cfg.DeviceCount)
	}
	if cfg.Interval != 500*time.Millisecond {
		t.Fatalf("Interval = %s", cfg.Interval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.Seed != 99 {
		t.Fatalf("Seed = %d", cfg.Seed)
	}
	if cfg.SpikeChance != 10 {
		t.Fatalf("SpikeChance = %d", cfg.SpikeChance)
	}
}

func TestLoadConfigFromEnvRejectsInvalidDeviceCount(t *testing.T) {
	_, err := LoadConfigFromEnv(mapLookup(map[string]string{
		"FLEETMON_SIM_DEVICES": "0",
	}))
	if err == nil || !strings.Contains(err.Error(), "FLEETMON_SIM_DEVICES") {
		t.Fatalf("error = %v, want device count validation error", err)
	}
}

func TestLoadConfigFromEnvRejectsSpikeChanceOutOfRange(t *testing.T) {
	_, err := LoadConfigFromEnv(mapLookup(map[string]string{
		"FLEETMON_SIM_SPIKE_CHANCE": "150",
	}))
	if err == nil || !strings.Contains(err.Error(), "FLEETMON_SIM_SPIKE_CHANCE") {
		t.Fatalf("error = %v, want spike chance validation error", err)
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}
