package device

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for device identity operations.
// Lookups used by ingestion are always provider-scoped; company scoping is
// enforced by the ingestion service after resolution.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetBySerial(ctx context.Context, serial string) (*Device, error)
	GetByProviderDeviceID(ctx context.Context, provider Provider, providerDeviceID string) (*Device, error)

	// UpsertBySerial registers a device keyed on its serial number. If the
	// serial is already known the existing row is updated in place and the
	// entity's ID is populated from it.
	UpsertBySerial(ctx context.Context, device *Device) error

	UpdateStatus(ctx context.Context, deviceID uuid.UUID, status DeviceStatus) error
	UpdateSyncTokenHash(ctx context.Context, deviceID uuid.UUID, hash string) error
	TouchLastSync(ctx context.Context, deviceID uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter *Filter) ([]*Device, int64, error)
}

// Filter represents filtering options for listing devices.
type Filter struct {
	Provider  *Provider
	Status    *DeviceStatus
	TruckID   *uuid.UUID
	IsOffline *bool
	Page      int
	PageSize  int
}
