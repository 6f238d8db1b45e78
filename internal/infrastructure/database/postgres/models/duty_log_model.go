package models

import (
	"time"

	"github.com/google/uuid"
)

// DutyLogModel is one duty-status segment. ExternalID carries the
// provider/client record id used for idempotent upserts; RawPayload keeps
// the original provider payload for audit.
type DutyLogModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index:idx_duty_logs_driver_window,priority:1"`
	TruckID       *uuid.UUID `gorm:"type:uuid;index"`
	DeviceID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_duty_logs_external,priority:1"`
	ExternalID    *string    `gorm:"type:varchar(255);uniqueIndex:idx_duty_logs_external,priority:2"`
	Status        string     `gorm:"type:varchar(50);not null"`
	StartTime     time.Time  `gorm:"not null;index:idx_duty_logs_driver_window,priority:2"`
	EndTime       *time.Time `gorm:"type:timestamp"`
	OdometerStart *float64   `gorm:"type:double precision"`
	OdometerEnd   *float64   `gorm:"type:double precision"`
	StartLocation *string    `gorm:"type:varchar(500)"`
	EndLocation   *string    `gorm:"type:varchar(500)"`
	Certified     bool       `gorm:"not null;default:false"`
	RawPayload    []byte     `gorm:"type:jsonb"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (DutyLogModel) TableName() string {
	return "duty_status_logs"
}
