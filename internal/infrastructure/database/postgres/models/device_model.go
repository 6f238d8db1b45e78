package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel represents the database model for ELD devices.
type DeviceModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Provider         string     `gorm:"type:varchar(50);not null;index:idx_devices_provider_device,priority:1"`
	ProviderDeviceID string     `gorm:"type:varchar(255);not null;index:idx_devices_provider_device,priority:2"`
	SerialNumber     string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name             *string    `gorm:"type:varchar(255)"`
	TruckID          *uuid.UUID `gorm:"type:uuid;index"`
	Status           string     `gorm:"type:varchar(50);not null;default:'active'"`
	AppVersion       *string    `gorm:"type:varchar(100)"`
	Metadata         []byte     `gorm:"type:jsonb"`
	SyncTokenHash    *string    `gorm:"type:varchar(255)"`
	LastSyncAt       *time.Time `gorm:"type:timestamp"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
