package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateDevice(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})

	body := strings.NewReader(`{"name":"sensor-a","location":"Server Room"}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/devices", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var response deviceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if response.ID != 1 || response.Name != "sensor-a" {
		t.Fatalf("response = %#v", response)
	}
	if !response.IsActive {
		t.Fatal("is_active should default to true")
	}
}

func TestCreateDeviceRejectsEmptyName(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})

	body := strings.NewReader(`{"name":"  ","location":"Server Room"}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/devices", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestListDevicesPaginates(t *testing.T) {
	fs := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fs})
	for _, name := range []string{"a", "b", "c"} {
		body := strings.NewReader(`{"name":"sensor-` + name + `","location":"Warehouse"}`)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/devices", body))
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed device failed: %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/devices?skip=1&limit=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var devices []deviceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &devices); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(devices) != 1 || devices[0].Name != "sensor-b" {
		t.Fatalf("devices = %#v", devices)
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/devices/99", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGetDeviceRejectsBadID(t *testing.T) {
	h := NewHandler(testConfig(t, nil), Dependencies{Store: newFakeStore()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/devices/not-a-number", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUpdateDevice(t *testing.T) {
	fs := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fs})

	seed := httptest.NewRecorder()
	h.ServeHTTP(seed, httptest.NewRequest(http.MethodPost, "/v1/devices", strings.NewReader(`{"name":"sensor-a","location":"Server Room"}`)))
	if seed.Code != http.StatusCreated {
		t.Fatalf("seed failed: %d", seed.Code)
	}

	body := strings.NewReader(`{"name":"sensor-a","location":"Loading Dock","is_active":false}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/v1/devices/1", body))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var response deviceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if response.Location != "Loading Dock" || response.IsActive {
		t.Fatalf("response = %#v", response)
	}
}

func TestDeleteDevice(t *testing.T) {
	fs := newFakeStore()
	h := NewHandler(testConfig(t, nil), Dependencies{Store: fs})

	seed := httptest.NewRecorder()
	h.ServeHTTP(seed, httptest.NewRequest(http.MethodPost, "/v1/devices", strings.NewReader(`{"name":"sensor-a","location":"Server Room"}`)))
	if seed.Code != http.StatusCreated {
		t.Fatalf("seed failed: %d", seed.Code)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/devices/1", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}

	again := httptest.NewRecorder()
	h.ServeHTTP(again, httptest.NewRequest(http.MethodDelete, "/v1/devices/1", nil))
	if again.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", again.Code)
	}
}
