package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fleetmon/fleetmon/internal/auth"
	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/observability"
	"github.com/fleetmon/fleetmon/internal/store"
)

const (
	minTemperature = -50.0
	maxTemperature = 150.0
	minPercent     = 0.0
	maxPercent     = 100.0
)

type readingRequest struct {
	DeviceID     int64      `json:"device_id"`
	Temperature  *float64   `json:"temperature"`
	Humidity     *float64   `json:"humidity"`
	BatteryLevel *float64   `json:"battery_level"`
	Timestamp    *time.Time `json:"timestamp"`
}

type readingResponse struct {
	ID           int64     `json:"id"`
	DeviceID     int64     `json:"device_id"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	BatteryLevel float64   `json:"battery_level"`
	Timestamp    time.Time `json:"timestamp"`
}

func toReadingResponse(reading store.Reading) readingResponse {
	return readingResponse{
		ID:           reading.ID,
		DeviceID:     reading.DeviceID,
		Temperature:  reading.Temperature,
		Humidity:     reading.Humidity,
		BatteryLevel: reading.BatteryLevel,
		Timestamp:    reading.Timestamp,
	}
}

func (req readingRequest) validate() error {
	if req.DeviceID <= 0 {
		return fmt.Errorf("device_id must be positive")
	}
	if req.Temperature == nil || *req.Temperature < minTemperature || *req.Temperature > maxTemperature {
		return fmt.Errorf("temperature must be between %.0f and %.0f", minTemperature, maxTemperature)
	}
	if req.Humidity == nil || *req.Humidity < minPercent || *req.Humidity > maxPercent {
		return fmt.Errorf("humidity must be between %.0f and %.0f", minPercent, maxPercent)
	}
	if req.BatteryLevel == nil || *req.BatteryLevel < minPercent || *req.BatteryLevel > maxPercent {
		return fmt.Errorf("battery_level must be between %.0f and %.0f", minPercent, maxPercent)
	}
	return nil
}

func handleCreateReading(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "reading store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request readingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid reading request body", false, map[string]any{"details": err.Error()})
		return
	}
	if err := request.validate(); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_READING", err.Error(), false, nil)
		return
	}

	device, err := deps.Store.GetDevice(r.Context(), request.DeviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDeviceNotFound(w, r, request.DeviceID)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to resolve device", true, map[string]any{"details": err.Error()})
		return
	}
	if !device.IsActive {
		writeError(r.Context(), w, http.StatusBadRequest, "DEVICE_INACTIVE", fmt.Sprintf("device %d is not active", request.DeviceID), false, nil)
		return
	}

	input := store.CreateReadingInput{
		DeviceID:     request.DeviceID,
		Temperature:  *request.Temperature,
		Humidity:     *request.Humidity,
		BatteryLevel: *request.BatteryLevel,
	}
	if request.Timestamp != nil {
		input.Timestamp = request.Timestamp.UTC()
	}

	reading, err := deps.Store.CreateReading(r.Context(), input)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to store reading", true, map[string]any{"details": err.Error()})
		return
	}

	critical := reading.Temperature > cfg.Thresholds.CriticalTemperature
	observability.ObserveIngestReading(critical)
	if critical && deps.Logger != nil {
		deps.Logger.WarnContext(r.Context(), "critical temperature reading",
			slog.Int64("device_id", reading.DeviceID),
			slog.Int64("reading_id", reading.ID),
			slog.Float64("temperature", reading.Temperature),
			slog.Float64("threshold", cfg.Thresholds.CriticalTemperature),
		)
	}

	writeJSON(w, http.StatusCreated, toReadingResponse(reading))
}

func handleGetReading(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "reading store is not configured", false, nil)
		return
	}

	raw := strings.TrimSpace(r.PathValue("id"))
	readingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || readingID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_READING_ID", "reading id must be a positive integer", false, nil)
		return
	}

	reading, err := deps.Store.GetReading(r.Context(), readingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "READING_NOT_FOUND", fmt.Sprintf("reading with id %d not found", readingID), false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to load reading", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toReadingResponse(reading))
}

func handleListDeviceReadings(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "reading store is not configured", false, nil)
		return
	}
	deviceID, ok := devicePathID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", err.Error(), false, nil)
		return
	}
	if limit <= 0 || limit > maxPageLimit {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", fmt.Sprintf("limit must be in 1..%d", maxPageLimit), false, nil)
		return
	}

	if _, err := deps.Store.GetDevice(r.Context(), deviceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDeviceNotFound(w, r, deviceID)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to resolve device", true, map[string]any{"details": err.Error()})
		return
	}

	readings, err := deps.Store.ListDeviceReadings(r.Context(), deviceID, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to list readings", true, map[string]any{"details": err.Error()})
		return
	}
	payload := make([]readingResponse, 0, len(readings))
	for _, reading := range readings {
		payload = append(payload, toReadingResponse(reading))
	}
	writeJSON(w, http.StatusOK, payload)
}
