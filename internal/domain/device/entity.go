package device

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies the upstream source of a device's telemetry.
type Provider string

const (
	ProviderSamsara Provider = "samsara"
	ProviderGeotab  Provider = "geotab"
	ProviderMotive  Provider = "motive"

	// ProviderMobileApp is reserved for the first-party driver app acting
	// as an ELD.
	ProviderMobileApp Provider = "mobile_app"
)

// KnownProviders lists every provider the ingestion layer accepts.
var KnownProviders = []Provider{
	ProviderSamsara,
	ProviderGeotab,
	ProviderMotive,
	ProviderMobileApp,
}

func (p Provider) Valid() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// Device represents one physical ELD unit or one mobile-app installation
// acting as an ELD.
type Device struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	Provider         Provider
	ProviderDeviceID string
	SerialNumber     string
	Name             *string
	TruckID          *uuid.UUID
	Status           DeviceStatus
	AppVersion       *string
	Metadata         map[string]string
	SyncTokenHash    *string
	LastSyncAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeviceStatus represents the lifecycle state of a device. Devices are
// never deleted, only deactivated.
type DeviceStatus string

const (
	StatusActive      DeviceStatus = "active"
	StatusInactive    DeviceStatus = "inactive"
	StatusMalfunction DeviceStatus = "malfunction"
)

// IsOnline checks whether the device synced within the last 15 minutes.
func (d *Device) IsOnline() bool {
	if d.LastSyncAt == nil {
		return false
	}
	return time.Since(*d.LastSyncAt) < 15*time.Minute
}
