package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceEventModel is a detected or reported violation/anomaly.
type ComplianceEventModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeviceID    *uuid.UUID `gorm:"type:uuid;index"`
	TruckID     *uuid.UUID `gorm:"type:uuid"`
	DriverID    *uuid.UUID `gorm:"type:uuid;index"`
	EventType   string     `gorm:"type:varchar(50);not null"`
	Severity    string     `gorm:"type:varchar(20);not null"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	EventTime   time.Time  `gorm:"not null;index"`
	Resolved    bool       `gorm:"not null;default:false"`
	ResolvedAt  *time.Time `gorm:"type:timestamp"`
	ResolveNote *string    `gorm:"type:text"`
	Metadata    []byte     `gorm:"type:jsonb"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

func (ComplianceEventModel) TableName() string {
	return "compliance_events"
}
