package driver

import (
	"context"

	"github.com/google/uuid"

	"eld-compliance/internal/domain/device"
)

// Repository manages driver mappings. Mappings are soft-deleted (active
// set to false) to preserve the audit trail; at most one active mapping
// may exist per (device, provider, provider driver id) tuple.
type Repository interface {
	Create(ctx context.Context, mapping *Mapping) error
	GetByID(ctx context.Context, mappingID uuid.UUID) (*Mapping, error)

	// ResolveDriver returns the internal driver id for an active mapping,
	// or ErrMappingNotFound when none exists. An unmapped driver is a
	// valid condition for ingestion, not a failure.
	ResolveDriver(ctx context.Context, deviceID uuid.UUID, provider device.Provider, providerDriverID string) (uuid.UUID, error)

	Deactivate(ctx context.Context, mappingID uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*Mapping, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]*Mapping, error)
}
