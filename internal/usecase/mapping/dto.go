package mapping

import (
	"time"

	"github.com/google/uuid"

	domainDevice "eld-compliance/internal/domain/device"
	domainDriver "eld-compliance/internal/domain/driver"
)

type CreateMappingRequest struct {
	DeviceID         uuid.UUID             `json:"device_id" validate:"required"`
	Provider         domainDevice.Provider `json:"provider" validate:"required,oneof=samsara geotab motive mobile_app"`
	ProviderDriverID string                `json:"provider_driver_id" validate:"required,min=1,max=255"`
	DriverID         uuid.UUID             `json:"driver_id" validate:"required"`
}

type MappingResponse struct {
	ID               uuid.UUID             `json:"id"`
	CompanyID        uuid.UUID             `json:"company_id"`
	DeviceID         uuid.UUID             `json:"device_id"`
	Provider         domainDevice.Provider `json:"provider"`
	ProviderDriverID string                `json:"provider_driver_id"`
	DriverID         uuid.UUID             `json:"driver_id"`
	Active           bool                  `json:"active"`
	CreatedAt        time.Time             `json:"created_at"`
}

type MappingListResponse struct {
	Mappings []*MappingResponse `json:"mappings"`
	Total    int                `json:"total"`
}

func ToMappingResponse(m *domainDriver.Mapping) *MappingResponse {
	return &MappingResponse{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		DeviceID:         m.DeviceID,
		Provider:         m.Provider,
		ProviderDriverID: m.ProviderDriverID,
		DriverID:         m.DriverID,
		Active:           m.Active,
		CreatedAt:        m.CreatedAt,
	}
}
