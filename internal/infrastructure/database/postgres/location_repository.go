package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainLocation "eld-compliance/internal/domain/location"
	"eld-compliance/internal/infrastructure/database/postgres/models"
)

// LocationRepository implements the location ping repository over Postgres.
type LocationRepository struct {
	db *DB
}

func NewLocationRepository(db *DB) domainLocation.Repository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) InsertBatch(ctx context.Context, pings []*domainLocation.Ping) error {
	if len(pings) == 0 {
		return nil
	}

	dbModels := make([]models.LocationPingModel, len(pings))
	for i, p := range pings {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.CreatedAt = time.Now()
		dbModels[i] = models.LocationPingModel{
			ID:         p.ID,
			CompanyID:  p.CompanyID,
			DeviceID:   p.DeviceID,
			TruckID:    p.TruckID,
			DriverID:   p.DriverID,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			Speed:      p.Speed,
			Heading:    p.Heading,
			Odometer:   p.Odometer,
			RecordedAt: p.RecordedAt,
			CreatedAt:  p.CreatedAt,
		}
	}

	if err := r.db.DB.WithContext(ctx).CreateInBatches(dbModels, 500).Error; err != nil {
		return fmt.Errorf("failed to insert location batch: %w", err)
	}

	return nil
}

func (r *LocationRepository) ListForDevice(ctx context.Context, deviceID uuid.UUID, from, to time.Time, limit int) ([]*domainLocation.Ping, error) {
	if limit <= 0 {
		limit = 500
	}

	var dbModels []models.LocationPingModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND recorded_at BETWEEN ? AND ?", deviceID, from, to).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list location pings: %w", err)
	}

	pings := make([]*domainLocation.Ping, len(dbModels))
	for i, m := range dbModels {
		pings[i] = &domainLocation.Ping{
			ID:         m.ID,
			CompanyID:  m.CompanyID,
			DeviceID:   m.DeviceID,
			TruckID:    m.TruckID,
			DriverID:   m.DriverID,
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			Speed:      m.Speed,
			Heading:    m.Heading,
			Odometer:   m.Odometer,
			RecordedAt: m.RecordedAt,
			CreatedAt:  m.CreatedAt,
		}
	}

	return pings, nil
}

func (r *LocationRepository) CountForDevice(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.LocationPingModel{}).
		Where("device_id = ?", deviceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count location pings: %w", err)
	}

	return count, nil
}
