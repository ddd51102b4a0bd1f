package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fleetmon/fleetmon/internal/auth"
	"github.com/fleetmon/fleetmon/internal/store"
)

const (
	maxNameLength     = 255
	maxLocationLength = 255
	defaultPageLimit  = 100
	maxPageLimit      = 1000
)

type deviceRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive *bool  `json:"is_active"`
}

type deviceResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive bool   `json:"is_active"`
}

func toDeviceResponse(device store.Device) deviceResponse {
	return deviceResponse{
		ID:       device.ID,
		Name:     device.Name,
		Location: device.Location,
		IsActive: device.IsActive,
	}
}

func (req deviceRequest) toInput() (store.CreateDeviceInput, error) {
	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)
	if name == "" || len(name) > maxNameLength {
		return store.CreateDeviceInput{}, fmt.Errorf("name must be 1 to %d characters", maxNameLength)
	}
	if location == "" || len(location) > maxLocationLength {
		return store.CreateDeviceInput{}, fmt.Errorf("location must be 1 to %d characters", maxLocationLength)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return store.CreateDeviceInput{Name: name, Location: location, IsActive: isActive}, nil
}

func handleCreateDevice(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "device store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request deviceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid device request body", false, map[string]any{"details": err.Error()})
		return
	}
	input, err := request.toInput()
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DEVICE", err.Error(), false, nil)
		return
	}

	device, err := deps.Store.CreateDevice(r.Context(), input)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to create device", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, toDeviceResponse(device))
}

func handleListDevices(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "device store is not configured", false, nil)
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_SKIP", err.Error(), false, nil)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", err.Error(), false, nil)
		return
	}
	if skip < 0 || limit <= 0 || limit > maxPageLimit {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_PAGINATION", fmt.Sprintf("skip must be >= 0 and limit in 1..%d", maxPageLimit), false, nil)
		return
	}

	devices, err := deps.Store.ListDevices(r.Context(), skip, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to list devices", true, map[string]any{"details": err.Error()})
		return
	}
	payload := make([]deviceResponse, 0, len(devices))
	for _, device := range devices {
		payload = append(payload, toDeviceResponse(device))
	}
	writeJSON(w, http.StatusOK, payload)
}

func handleGetDevice(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "device store is not configured", false, nil)
		return
	}
	deviceID, ok := devicePathID(w, r)
	if !ok {
		return
	}

	device, err := deps.Store.GetDevice(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDeviceNotFound(w, r, deviceID)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to load device", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponse(device))
}

func handleUpdateDevice(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "device store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	deviceID, ok := devicePathID(w, r)
	if !ok {
		return
	}

	var request deviceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid device request body", false, map[string]any{"details": err.Error()})
		return
	}
	input, err := request.toInput()
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DEVICE", err.Error(), false, nil)
		return
	}

	device, err := deps.Store.UpdateDevice(r.Context(), deviceID, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDeviceNotFound(w, r, deviceID)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to update device", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponse(device))
}

func handleDeleteDevice(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "device store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWriter); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	deviceID, ok := devicePathID(w, r)
	if !ok {
		return
	}

	deleted, err := deps.Store.DeleteDevice(r.Context(), deviceID)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STORE_ERROR", "failed to delete device", true, map[string]any{"details": err.Error()})
		return
	}
	if !deleted {
		writeDeviceNotFound(w, r, deviceID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func devicePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	deviceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || deviceID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DEVICE_ID", "device id must be a positive integer", false, nil)
		return 0, false
	}
	return deviceID, true
}

func writeDeviceNotFound(w http.ResponseWriter, r *http.Request, deviceID int64) {
	writeError(r.Context(), w, http.StatusNotFound, "DEVICE_NOT_FOUND", fmt.Sprintf("device with id %d not found", deviceID), false, nil)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return value, nil
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}
