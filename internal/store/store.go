package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Repository is the persistence surface for the device fleet. The postgres
// subpackage provides the production implementation.
type Repository interface {
	HealthCheck(ctx context.Context) error

	CreateDevice(ctx context.Context, in CreateDeviceInput) (Device, error)
	GetDevice(ctx context.Context, deviceID int64) (Device, error)
	ListDevices(ctx context.Context, skip, limit int) ([]Device, error)
	UpdateDevice(ctx context.Context, deviceID int64, in CreateDeviceInput) (Device, error)
	DeleteDevice(ctx context.Context, deviceID int64) (bool, error)

	CreateReading(ctx context.Context, in CreateReadingInput) (Reading, error)
	GetReading(ctx context.Context, readingID int64) (Reading, error)
	ListDeviceReadings(ctx context.Context, deviceID int64, limit int) ([]Reading, error)
	ListReadingsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Reading, error)
	DeleteReadingsThrough(ctx context.Context, cutoff time.Time, maxID int64) (int64, error)
}

type Device struct {
	ID       int64
	Name     string
	Location string
	IsActive bool
}

type Reading struct {
	ID           int64
	DeviceID     int64
	Temperature  float64
	Humidity     float64
	BatteryLevel float64
	Timestamp    time.Time
}

type CreateDeviceInput struct {
	Name     string
	Location string
	IsActive bool
}

type CreateReadingInput struct {
	DeviceID     int64
	Temperature  float64
	Humidity     float64
	BatteryLevel float64
	Timestamp    time.Time
}
