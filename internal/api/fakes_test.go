package api

import (
	"context"
	"sort"
	"time"

	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/nlq"
	"github.com/fleetmon/fleetmon/internal/store"
)

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

// fakeStore is an in-memory store.Repository for handler tests.
type fakeStore struct {
	devices      map[int64]store.Device
	readings     map[int64]store.Reading
	nextDevice   int64
	nextReading  int64
	healthErr    error
	deviceErr    error
	readingErr   error
	createdCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices:  map[int64]store.Device{},
		readings: map[int64]store.Reading{},
	}
}

func (f *fakeStore) HealthCheck(context.Context) error { return f.healthErr }

func (f *fakeStore) CreateDevice(_ context.Context, in store.CreateDeviceInput) (store.Device, error) {
	if f.deviceErr != nil {
		return store.Device{}, f.deviceErr
	}
	f.nextDevice++
	device := store.Device{ID: f.nextDevice, Name: in.Name, Location: in.Location, IsActive: in.IsActive}
	f.devices[device.ID] = device
	return device, nil
}

func (f *fakeStore) GetDevice(_ context.Context, deviceID int64) (store.Device, error) {
	if f.deviceErr != nil {
		return store.Device{}, f.deviceErr
	}
	device, ok := f.devices[deviceID]
	if !ok {
		return store.Device{}, store.ErrNotFound
	}
	return device, nil
}

func (f *fakeStore) ListDevices(_ context.Context, skip, limit int) ([]store.Device, error) {
	ids := make([]int64, 0, len(f.devices))
	for id := range f.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	devices := make([]store.Device, 0)
	for i, id := range ids {
		if i < skip {
			continue
		}
		if len(devices) >= limit {
			break
		}
		devices = append(devices, f.devices[id])
	}
	return devices, nil
}

func (f *fakeStore) UpdateDevice(_ context.Context, deviceID int64, in store.CreateDeviceInput) (store.Device, error) {
	if _, ok := f.devices[deviceID]; !ok {
		return store.Device{}, store.ErrNotFound
	}
	device := store.Device{ID: deviceID, Name: in.Name, Location: in.Location, IsActive: in.IsActive}
	f.devices[deviceID] = device
	return device, nil
}

func (f *fakeStore) DeleteDevice(_ context.Context, deviceID int64) (bool, error) {
	if _, ok := f.devices[deviceID]; !ok {
		return false, nil
	}
	delete(f.devices, deviceID)
	return true, nil
}

func (f *fakeStore) CreateReading(_ context.Context, in store.CreateReadingInput) (store.Reading, error) {
	if f.readingErr != nil {
		return store.Reading{}, f.readingErr
	}
	f.nextReading++
	f.createdCount++
	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	reading := store.Reading{
		ID:           f.nextReading,
		DeviceID:     in.DeviceID,
		Temperature:  in.Temperature,
		Humidity:     in.Humidity,
		BatteryLevel: in.BatteryLevel,
		Timestamp:    timestamp,
	}
	f.readings[reading.ID] = reading
	return reading, nil
}

func (f *fakeStore) GetReading(_ context.Context, readingID int64) (store.Reading, error) {
	reading, ok := f.readings[readingID]
	if !ok {
		return store.Reading{}, store.ErrNotFound
	}
	return reading, nil
}

func (f *fakeStore) ListDeviceReadings(_ context.Context, deviceID int64, limit int) ([]store.Reading, error) {
	readings := make([]store.Reading, 0)
	for _, reading := range f.readings {
		if reading.DeviceID == deviceID {
			readings = append(readings, reading)
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Timestamp.After(readings[j].Timestamp) })
	if len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

func (f *fakeStore) ListReadingsBefore(_ context.Context, cutoff time.Time, limit int) ([]store.Reading, error) {
	readings := make([]store.Reading, 0)
	for _, reading := range f.readings {
		if reading.Timestamp.Before(cutoff) {
			readings = append(readings, reading)
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].ID < readings[j].ID })
	if len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

func (f *fakeStore) DeleteReadingsThrough(_ context.Context, cutoff time.Time, maxID int64) (int64, error) {
	var deleted int64
	for id, reading := range f.readings {
		if reading.Timestamp.Before(cutoff) && id <= maxID {
			delete(f.readings, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAsker struct {
	response  nlq.Response
	err       error
	questions []string
}

func (f *fakeAsker) Ask(_ context.Context, question string) (nlq.Response, error) {
	f.questions = append(f.questions, question)
	if f.err != nil {
		return nlq.Response{}, f.err
	}
	return f.response, nil
}
