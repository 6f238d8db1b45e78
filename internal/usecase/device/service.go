package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "eld-compliance/internal/domain/device"
	"eld-compliance/internal/logger"
	appErrors "eld-compliance/pkg/errors"
	"eld-compliance/pkg/utils"
)

const syncTokenBytes = 32

// Service implements device identity use cases. Registration is the only
// path that issues sync tokens; the cleartext token is returned exactly
// once and only its bcrypt hash is stored.
type Service struct {
	deviceRepo domainDevice.Repository
}

func NewService(deviceRepo domainDevice.Repository) *Service {
	return &Service{deviceRepo: deviceRepo}
}

// RegisterMobileDevice registers (or re-registers) a phone installation
// acting as an ELD on behalf of the authenticated company.
// Re-registering the same serial rotates the sync token instead of
// creating a duplicate device; a serial already claimed by another
// company is refused so registration can never hijack a foreign device.
func (s *Service) RegisterMobileDevice(ctx context.Context, companyID uuid.UUID, req *RegisterDeviceRequest) (*RegisterDeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if existing, err := s.deviceRepo.GetBySerial(ctx, req.SerialNumber); err == nil {
		if existing.CompanyID != companyID {
			return nil, domainDevice.ErrDeviceNotFound
		}
	}

	dev := &domainDevice.Device{
		CompanyID:        companyID,
		Provider:         domainDevice.ProviderMobileApp,
		ProviderDeviceID: req.SerialNumber,
		SerialNumber:     req.SerialNumber,
		Name:             req.Name,
		TruckID:          req.TruckID,
		Status:           domainDevice.StatusActive,
		AppVersion:       req.AppVersion,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.deviceRepo.UpsertBySerial(ctx, dev); err != nil {
		return nil, err
	}

	token, err := utils.GenerateSecureToken(syncTokenBytes)
	if err != nil {
		return nil, err
	}

	hash, err := utils.HashToken(token)
	if err != nil {
		return nil, err
	}

	if err := s.deviceRepo.UpdateSyncTokenHash(ctx, dev.ID, hash); err != nil {
		return nil, err
	}

	registered, err := s.deviceRepo.GetByID(ctx, dev.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("mobile device registered",
		zap.String("device_id", registered.ID.String()),
		zap.String("serial_number", registered.SerialNumber),
		zap.String("event", "device_registered"),
	)

	return &RegisterDeviceResponse{
		Device:    ToDeviceResponse(registered),
		SyncToken: token,
	}, nil
}

// Authenticate resolves a device by id and checks its sync token. Inactive
// devices fail authentication even with a valid token.
func (s *Service) Authenticate(ctx context.Context, deviceID uuid.UUID, token string) (*domainDevice.Device, error) {
	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, appErrors.ErrUnauthenticated
	}

	if dev.SyncTokenHash == nil || !utils.CheckToken(*dev.SyncTokenHash, token) {
		return nil, appErrors.ErrInvalidToken
	}

	if dev.Status != domainDevice.StatusActive {
		return nil, domainDevice.ErrDeviceInactive
	}

	return dev, nil
}

func (s *Service) GetDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*DeviceResponse, error) {
	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev.CompanyID != companyID {
		return nil, domainDevice.ErrDeviceNotFound
	}

	return ToDeviceResponse(dev), nil
}

func (s *Service) ListDevices(ctx context.Context, companyID uuid.UUID, filter *DeviceFilterRequest) (*DeviceListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	devices, total, err := s.deviceRepo.List(ctx, companyID, ToDomainFilter(filter))
	if err != nil {
		return nil, err
	}

	responses := make([]*DeviceResponse, 0, len(devices))
	for _, dev := range devices {
		responses = append(responses, ToDeviceResponse(dev))
	}

	return &DeviceListResponse{
		Devices:  responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, companyID, deviceID uuid.UUID, req *UpdateStatusRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if dev.CompanyID != companyID {
		return domainDevice.ErrDeviceNotFound
	}

	if err := s.deviceRepo.UpdateStatus(ctx, deviceID, req.Status); err != nil {
		return err
	}

	logger.Info("device status updated",
		zap.String("device_id", deviceID.String()),
		zap.String("status", string(req.Status)),
	)
	return nil
}
