package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverMappingModel resolves provider driver ids to internal drivers.
// Rows are soft-deleted by clearing Active; a partial unique index in the
// migration enforces one active mapping per tuple.
type DriverMappingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID        uuid.UUID `gorm:"type:uuid;not null;index"`
	DeviceID         uuid.UUID `gorm:"type:uuid;not null;index:idx_mappings_lookup,priority:1"`
	Provider         string    `gorm:"type:varchar(50);not null;index:idx_mappings_lookup,priority:2"`
	ProviderDriverID string    `gorm:"type:varchar(255);not null;index:idx_mappings_lookup,priority:3"`
	DriverID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Active           bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (DriverMappingModel) TableName() string {
	return "driver_mappings"
}
