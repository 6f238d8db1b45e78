package driver

import (
	"time"

	"github.com/google/uuid"

	"eld-compliance/internal/domain/device"
)

// Mapping resolves a provider's driver identifier to an internal driver,
// scoped to one device and provider. Provider driver ids are stored as
// strings; numeric ids from vendor payloads are coerced before lookup.
type Mapping struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	DeviceID         uuid.UUID
	Provider         device.Provider
	ProviderDriverID string
	DriverID         uuid.UUID
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
