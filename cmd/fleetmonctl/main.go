package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fleetmon/fleetmon/internal/cli/fleetmonctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("FLEETMON_CLI_TIMEOUT")), 10*time.Second)
	options := fleetmonctl.Options{
		BaseURL: envOr("FLEETMON_API_URL", "http://localhost:8000"),
		APIKey:  strings.TrimSpace(os.Getenv("FLEETMON_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	code := fleetmonctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid FLEETMON_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
