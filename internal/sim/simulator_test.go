package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterDevicesCreatesFleet(t *testing.T) {
	var created []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/devices" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if apiKey := r.Header.Get("X-API-Key"); apiKey != "k1" {
			t.Fatalf("X-API-Key = %q, want k1", apiKey)
		}
		var req createDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode device request: %v", err)
		}
		if !req.IsActive {
			t.Fatal("is_active = false, want true")
		}
		if req.Location == "" {
			t.Fatal("location is empty")
		}
		created = append(created, req.Name)
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"id":%d}`, len(created))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.APIBaseURL = server.URL
	cfg.APIKey = "k1"
	cfg.DeviceCount = 3
	cfg.Seed = 1

	svc, err := NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if err := svc.registerDevices(context.Background()); err != nil {
		t.Fatalf("registerDevices() error = %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created %d devices, want 3", len(created))
	}
	if created[0] != "sim-sensor-001" || created[2] != "sim-sensor-003" {
		t.Fatalf("unexpected device names: %v", created)
	}
	if len(svc.deviceIDs) != 3 || svc.deviceIDs[0] != 1 || svc.deviceIDs[2] != 3 {
		t.Fatalf("deviceIDs = %v", svc.deviceIDs)
	}
}

func TestEmitOncePostsReadingPerDevice(t *testing.T) {
	var gotDeviceIDs []int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/readings" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req createReadingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode reading request: %v", err)
		}
		if req.Humidity < 0 || req.Humidity > 100 {
			t.Fatalf("humidity out of range: %v", req.Humidity)
		}
		gotDeviceIDs = append(gotDeviceIDs, req.DeviceID)
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"id":%d}`, len(gotDeviceIDs))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.APIBaseURL = server.URL
	cfg.DeviceCount = 2
	cfg.Seed = 5

	svc, err := NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.deviceIDs = []int64{10, 11}

	if err := svc.emitOnce(context.Background()); err != nil {
		t.Fatalf("emitOnce() error = %v", err)
	}
	if len(gotDeviceIDs) != 2 || gotDeviceIDs[0] != 10 || gotDeviceIDs[1] != 11 {
		t.Fatalf("gotDeviceIDs = %v", gotDeviceIDs)
	}
}

func TestEmitOnceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"INVALID_READING","message":"temperature out of range"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.APIBaseURL = server.URL

	svc, err := NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.deviceIDs = []int64{1}

	err = svc.emitOnce(context.Background())
	if err == nil {
		t.Fatal("emitOnce() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("error = %v, want status in message", err)
	}
}
