package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainDevice "eld-compliance/internal/domain/device"
	"eld-compliance/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements the device domain repository over Postgres.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	if d.Status == "" {
		d.Status = domainDevice.StatusActive
	}

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	d.ID = dbModel.ID
	d.CreatedAt = dbModel.CreatedAt
	d.UpdatedAt = dbModel.UpdatedAt

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetBySerial(ctx context.Context, serial string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("serial_number = ?", serial).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByProviderDeviceID(ctx context.Context, provider domainDevice.Provider, providerDeviceID string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("provider = ? AND provider_device_id = ?", string(provider), providerDeviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) UpsertBySerial(ctx context.Context, d *domainDevice.Device) error {
	now := time.Now()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = domainDevice.StatusActive
	}

	dbModel := toDeviceModel(d)
	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "serial_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "truck_id", "app_version", "metadata", "last_sync_at", "updated_at",
			}),
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	// The conflict path keeps the existing row's id; read it back so the
	// caller holds the canonical identity.
	existing, err := r.GetBySerial(ctx, d.SerialNumber)
	if err != nil {
		return err
	}
	d.ID = existing.ID
	d.CompanyID = existing.CompanyID
	d.CreatedAt = existing.CreatedAt

	return nil
}

func (r *DeviceRepository) UpdateStatus(ctx context.Context, deviceID uuid.UUID, status domainDevice.DeviceStatus) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) UpdateSyncTokenHash(ctx context.Context, deviceID uuid.UUID, hash string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"sync_token_hash": hash,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update sync token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) TouchLastSync(ctx context.Context, deviceID uuid.UUID) error {
	now := time.Now()
	return r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"last_sync_at": now,
			"updated_at":   now,
		}).Error
}

func (r *DeviceRepository) List(ctx context.Context, companyID uuid.UUID, filter *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	query := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("company_id = ?", companyID)

	if filter != nil {
		if filter.Provider != nil {
			query = query.Where("provider = ?", string(*filter.Provider))
		}
		if filter.Status != nil {
			query = query.Where("status = ?", string(*filter.Status))
		}
		if filter.TruckID != nil {
			query = query.Where("truck_id = ?", *filter.TruckID)
		}
		if filter.IsOffline != nil {
			cutoff := time.Now().Add(-15 * time.Minute)
			if *filter.IsOffline {
				query = query.Where("last_sync_at IS NULL OR last_sync_at < ?", cutoff)
			} else {
				query = query.Where("last_sync_at >= ?", cutoff)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	page, pageSize := 1, 50
	if filter != nil {
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.PageSize > 0 {
			pageSize = filter.PageSize
		}
	}

	var dbModels []models.DeviceModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, total, nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	var metadata []byte
	if len(d.Metadata) > 0 {
		metadata, _ = json.Marshal(d.Metadata)
	}

	return &models.DeviceModel{
		ID:               d.ID,
		CompanyID:        d.CompanyID,
		Provider:         string(d.Provider),
		ProviderDeviceID: d.ProviderDeviceID,
		SerialNumber:     d.SerialNumber,
		Name:             d.Name,
		TruckID:          d.TruckID,
		Status:           string(d.Status),
		AppVersion:       d.AppVersion,
		Metadata:         metadata,
		SyncTokenHash:    d.SyncTokenHash,
		LastSyncAt:       d.LastSyncAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}

	return &domainDevice.Device{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		Provider:         domainDevice.Provider(m.Provider),
		ProviderDeviceID: m.ProviderDeviceID,
		SerialNumber:     m.SerialNumber,
		Name:             m.Name,
		TruckID:          m.TruckID,
		Status:           domainDevice.DeviceStatus(m.Status),
		AppVersion:       m.AppVersion,
		Metadata:         metadata,
		SyncTokenHash:    m.SyncTokenHash,
		LastSyncAt:       m.LastSyncAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
