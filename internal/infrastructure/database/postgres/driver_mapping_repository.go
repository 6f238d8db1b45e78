package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainDevice "eld-compliance/internal/domain/device"
	domainDriver "eld-compliance/internal/domain/driver"
	"eld-compliance/internal/infrastructure/database/postgres/models"
)

// DriverMappingRepository implements the driver mapping repository over
// Postgres.
type DriverMappingRepository struct {
	db *DB
}

func NewDriverMappingRepository(db *DB) domainDriver.Repository {
	return &DriverMappingRepository{db: db}
}

func (r *DriverMappingRepository) Create(ctx context.Context, m *domainDriver.Mapping) error {
	// Only one active mapping may exist per tuple; check before insert so
	// the caller gets a domain error instead of a constraint violation.
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.DriverMappingModel{}).
		Where("device_id = ? AND provider = ? AND provider_driver_id = ? AND active = true",
			m.DeviceID, string(m.Provider), m.ProviderDriverID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing mapping: %w", err)
	}
	if count > 0 {
		return domainDriver.ErrMappingExists
	}

	m.ID = uuid.New()
	m.Active = true
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	dbModel := toMappingModel(m)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create driver mapping: %w", err)
	}

	return nil
}

func (r *DriverMappingRepository) GetByID(ctx context.Context, mappingID uuid.UUID) (*domainDriver.Mapping, error) {
	var dbModel models.DriverMappingModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", mappingID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDriver.ErrMappingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver mapping: %w", err)
	}

	return toMappingEntity(&dbModel), nil
}

func (r *DriverMappingRepository) ResolveDriver(ctx context.Context, deviceID uuid.UUID, provider domainDevice.Provider, providerDriverID string) (uuid.UUID, error) {
	var dbModel models.DriverMappingModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND provider = ? AND provider_driver_id = ? AND active = true",
			deviceID, string(provider), providerDriverID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, domainDriver.ErrMappingNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve driver: %w", err)
	}

	return dbModel.DriverID, nil
}

func (r *DriverMappingRepository) Deactivate(ctx context.Context, mappingID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DriverMappingModel{}).
		Where("id = ? AND active = true", mappingID).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate mapping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDriver.ErrMappingNotFound
	}

	return nil
}

func (r *DriverMappingRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domainDriver.Mapping, error) {
	var dbModels []models.DriverMappingModel
	err := r.db.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	return toMappingEntities(dbModels), nil
}

func (r *DriverMappingRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]*domainDriver.Mapping, error) {
	var dbModels []models.DriverMappingModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	return toMappingEntities(dbModels), nil
}

func toMappingModel(m *domainDriver.Mapping) *models.DriverMappingModel {
	return &models.DriverMappingModel{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		DeviceID:         m.DeviceID,
		Provider:         string(m.Provider),
		ProviderDriverID: m.ProviderDriverID,
		DriverID:         m.DriverID,
		Active:           m.Active,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMappingEntity(m *models.DriverMappingModel) *domainDriver.Mapping {
	return &domainDriver.Mapping{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		DeviceID:         m.DeviceID,
		Provider:         domainDevice.Provider(m.Provider),
		ProviderDriverID: m.ProviderDriverID,
		DriverID:         m.DriverID,
		Active:           m.Active,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMappingEntities(dbModels []models.DriverMappingModel) []*domainDriver.Mapping {
	mappings := make([]*domainDriver.Mapping, len(dbModels))
	for i := range dbModels {
		mappings[i] = toMappingEntity(&dbModels[i])
	}
	return mappings
}
