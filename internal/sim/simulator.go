package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Service struct {
	cfg       Config
	log       *slog.Logger
	http      *http.Client
	generator *Generator
	deviceIDs []int64
}

type createDeviceRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive bool   `json:"is_active"`
}

type deviceResponse struct {
	ID int64 `json:"id"`
}

type createReadingRequest struct {
	DeviceID     int64   `json:"device_id"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	BatteryLevel float64 `json:"battery_level"`
}

type readingResponse struct {
	ID int64 `json:"id"`
}

var simulatedLocations = []string{
	"server-room-a", "server-room-b", "warehouse-north",
	"warehouse-south", "loading-dock", "cold-storage",
}

func NewService(cfg Config, logger *slog.Logger, client *http.Client) (*Service, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if cfg.DeviceCount <= 0 {
		return nil, fmt.Errorf("device count must be > 0")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		http:      client,
		generator: NewGenerator(cfg.Seed, cfg.DeviceCount, cfg.SpikeChance),
	}, nil
}

// Run registers the simulated fleet, then posts one reading per device on
// every tick until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if len(s.deviceIDs) == 0 {
			if err := s.registerDevices(ctx); err != nil {
				s.log.Error("failed to register simulated devices", slog.Any("error", err))
			}
		} else {
			if err := s.emitOnce(ctx); err != nil {
				s.log.Error("failed to publish simulated readings", slog.Any("error", err))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) registerDevices(ctx context.Context) error {
	ids := make([]int64, 0, s.cfg.DeviceCount)
	for i := 0; i < s.cfg.DeviceCount; i++ {
		req := createDeviceRequest{
			Name:     DeviceName(i),
			Location: pickOne(s.generator.rnd, simulatedLocations),
			IsActive: true,
		}

		var resp deviceResponse
		status, body, err := s.doJSON(ctx, http.MethodPost, "/v1/devices", req, &resp)
		if err != nil {
			return fmt.Errorf("register device %s: %w", req.Name, err)
		}
		if status != http.StatusCreated {
			return fmt.Errorf("register device %s failed with status %d: %s", req.Name, status, strings.TrimSpace(string(body)))
		}
		ids = append(ids, resp.ID)
	}

	s.deviceIDs = ids
	s.log.Info("registered simulated fleet", slog.Int("devices", len(ids)))
	return nil
}

func (s *Service) emitOnce(ctx context.Context) error {
	for i, deviceID := range s.deviceIDs {
		sample := s.generator.NextReading(i)
		req := createReadingRequest{
			DeviceID:     deviceID,
			Temperature:  sample.Temperature,
			Humidity:     sample.Humidity,
			BatteryLevel: sample.BatteryLevel,
		}

		var resp readingResponse
		status, body, err := s.doJSON(ctx, http.MethodPost, "/v1/readings", req, &resp)
		if err != nil {
			return fmt.Errorf("post reading for device %d: %w", deviceID, err)
		}
		if status != http.StatusCreated {
			return fmt.Errorf("post reading for device %d failed with status %d: %s", deviceID, status, strings.TrimSpace(string(body)))
		}
	}

	s.log.Info("published simulated readings", slog.Int("devices", len(s.deviceIDs)))
	return nil
}

func (s *Service) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) (int, []byte, error) {
	var payload io.Reader
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.APIBaseURL+path, payload)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", s.cfg.APIKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	if responseBody != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, responseBody); err != nil {
			return resp.StatusCode, body, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, body, nil
}
