package mapping

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "eld-compliance/internal/domain/device"
	domainDriver "eld-compliance/internal/domain/driver"
	"eld-compliance/internal/logger"
	appErrors "eld-compliance/pkg/errors"
	"eld-compliance/pkg/utils"
)

// Service implements driver-mapping use cases. Mappings tie a provider's
// opaque driver id to an internal driver so incoming duty segments can be
// attributed; creating one never rewrites history, it only affects records
// ingested afterwards.
type Service struct {
	mappingRepo domainDriver.Repository
	deviceRepo  domainDevice.Repository
}

func NewService(mappingRepo domainDriver.Repository, deviceRepo domainDevice.Repository) *Service {
	return &Service{
		mappingRepo: mappingRepo,
		deviceRepo:  deviceRepo,
	}
}

func (s *Service) CreateMapping(ctx context.Context, companyID uuid.UUID, req *CreateMappingRequest) (*MappingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	dev, err := s.deviceRepo.GetByID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if dev.CompanyID != companyID {
		return nil, domainDevice.ErrDeviceNotFound
	}

	if _, err := s.mappingRepo.ResolveDriver(ctx, req.DeviceID, req.Provider, req.ProviderDriverID); err == nil {
		return nil, domainDriver.ErrMappingExists
	} else if !errors.Is(err, domainDriver.ErrMappingNotFound) {
		return nil, err
	}

	m := &domainDriver.Mapping{
		CompanyID:        companyID,
		DeviceID:         req.DeviceID,
		Provider:         req.Provider,
		ProviderDriverID: req.ProviderDriverID,
		DriverID:         req.DriverID,
		Active:           true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.mappingRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.Info("driver mapping created",
		zap.String("mapping_id", m.ID.String()),
		zap.String("device_id", m.DeviceID.String()),
		zap.String("provider", string(m.Provider)),
		zap.String("driver_id", m.DriverID.String()),
	)

	return ToMappingResponse(m), nil
}

func (s *Service) DeactivateMapping(ctx context.Context, companyID, mappingID uuid.UUID) error {
	m, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		return err
	}
	if m.CompanyID != companyID {
		return domainDriver.ErrMappingNotFound
	}

	if err := s.mappingRepo.Deactivate(ctx, mappingID); err != nil {
		return err
	}

	logger.Info("driver mapping deactivated",
		zap.String("mapping_id", mappingID.String()),
	)
	return nil
}

func (s *Service) ListMappings(ctx context.Context, companyID uuid.UUID) (*MappingListResponse, error) {
	mappings, err := s.mappingRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]*MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		responses = append(responses, ToMappingResponse(m))
	}

	return &MappingListResponse{Mappings: responses, Total: len(responses)}, nil
}

func (s *Service) ListMappingsForDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*MappingListResponse, error) {
	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev.CompanyID != companyID {
		return nil, domainDevice.ErrDeviceNotFound
	}

	mappings, err := s.mappingRepo.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	responses := make([]*MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		responses = append(responses, ToMappingResponse(m))
	}

	return &MappingListResponse{Mappings: responses, Total: len(responses)}, nil
}
