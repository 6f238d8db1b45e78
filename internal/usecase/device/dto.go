package device

import (
	"time"

	"github.com/google/uuid"

	domainDevice "eld-compliance/internal/domain/device"
)

type RegisterDeviceRequest struct {
	SerialNumber string     `json:"serial_number" validate:"required,min=5,max=255"`
	Name         *string    `json:"name" validate:"omitempty,min=2,max=100"`
	TruckID      *uuid.UUID `json:"truck_id" validate:"omitempty"`
	AppVersion   *string    `json:"app_version" validate:"omitempty,max=50"`
}

type RegisterDeviceResponse struct {
	Device    *DeviceResponse `json:"device"`
	SyncToken string          `json:"sync_token"`
}

type UpdateStatusRequest struct {
	Status domainDevice.DeviceStatus `json:"status" validate:"required,oneof=active inactive malfunction"`
}

type DeviceFilterRequest struct {
	Provider  *domainDevice.Provider     `form:"provider"`
	Status    *domainDevice.DeviceStatus `form:"status"`
	TruckID   *uuid.UUID                 `form:"truck_id"`
	IsOffline *bool                      `form:"is_offline"`
	Page      int                        `form:"page"`
	PageSize  int                        `form:"page_size"`
}

type DeviceResponse struct {
	ID               uuid.UUID                 `json:"id"`
	CompanyID        uuid.UUID                 `json:"company_id"`
	Provider         domainDevice.Provider     `json:"provider"`
	ProviderDeviceID string                    `json:"provider_device_id"`
	SerialNumber     string                    `json:"serial_number"`
	Name             *string                   `json:"name,omitempty"`
	TruckID          *uuid.UUID                `json:"truck_id,omitempty"`
	Status           domainDevice.DeviceStatus `json:"status"`
	AppVersion       *string                   `json:"app_version,omitempty"`
	Online           bool                      `json:"online"`
	LastSyncAt       *time.Time                `json:"last_sync_at,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type DeviceListResponse struct {
	Devices  []*DeviceResponse `json:"devices"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:               d.ID,
		CompanyID:        d.CompanyID,
		Provider:         d.Provider,
		ProviderDeviceID: d.ProviderDeviceID,
		SerialNumber:     d.SerialNumber,
		Name:             d.Name,
		TruckID:          d.TruckID,
		Status:           d.Status,
		AppVersion:       d.AppVersion,
		Online:           d.IsOnline(),
		LastSyncAt:       d.LastSyncAt,
		CreatedAt:        d.CreatedAt,
	}
}

func ToDomainFilter(req *DeviceFilterRequest) *domainDevice.Filter {
	return &domainDevice.Filter{
		Provider:  req.Provider,
		Status:    req.Status,
		TruckID:   req.TruckID,
		IsOffline: req.IsOffline,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
}
