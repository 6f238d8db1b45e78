package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationPingModel is an append-only GPS sample.
type LocationPingModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeviceID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_pings_device_time,priority:1"`
	TruckID    *uuid.UUID `gorm:"type:uuid"`
	DriverID   *uuid.UUID `gorm:"type:uuid"`
	Latitude   float64    `gorm:"type:double precision;not null"`
	Longitude  float64    `gorm:"type:double precision;not null"`
	Speed      *float64   `gorm:"type:double precision"`
	Heading    *float64   `gorm:"type:double precision"`
	Odometer   *float64   `gorm:"type:double precision"`
	RecordedAt time.Time  `gorm:"not null;index:idx_pings_device_time,priority:2"`
	CreatedAt  time.Time  `gorm:"not null"`
}

func (LocationPingModel) TableName() string {
	return "location_pings"
}
