package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	domainLog "eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/infrastructure/database/postgres/models"
)

// DutyLogRepository implements the duty-status segment repository over
// Postgres.
type DutyLogRepository struct {
	db *DB
}

func NewDutyLogRepository(db *DB) domainLog.Repository {
	return &DutyLogRepository{db: db}
}

func (r *DutyLogRepository) Insert(ctx context.Context, s *domainLog.Segment) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	dbModel := toDutyLogModel(s)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to insert duty log: %w", err)
	}

	return nil
}

func (r *DutyLogRepository) UpsertByExternalID(ctx context.Context, s *domainLog.Segment) error {
	if s.ExternalID == nil || *s.ExternalID == "" {
		return r.Insert(ctx, s)
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	dbModel := toDutyLogModel(s)
	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "device_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"driver_id", "truck_id", "status", "start_time", "end_time",
				"odometer_start", "odometer_end", "start_location", "end_location",
				"certified", "raw_payload", "updated_at",
			}),
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert duty log: %w", err)
	}

	return nil
}

func (r *DutyLogRepository) ListForDriverWindow(ctx context.Context, companyID, driverID uuid.UUID, from, to time.Time) ([]*domainLog.Segment, error) {
	var dbModels []models.DutyLogModel
	err := r.db.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("driver_id = ?", driverID).
		Where("start_time <= ?", to).
		Where("end_time IS NULL OR end_time >= ?", from).
		Order("start_time ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duty logs: %w", err)
	}

	return toDutyLogEntities(dbModels), nil
}

func (r *DutyLogRepository) ListUnassigned(ctx context.Context, companyID uuid.UUID, limit int) ([]*domainLog.Segment, error) {
	if limit <= 0 {
		limit = 100
	}

	var dbModels []models.DutyLogModel
	err := r.db.DB.WithContext(ctx).
		Where("company_id = ? AND driver_id IS NULL", companyID).
		Order("start_time DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned duty logs: %w", err)
	}

	return toDutyLogEntities(dbModels), nil
}

func (r *DutyLogRepository) CountForDevice(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.DutyLogModel{}).
		Where("device_id = ?", deviceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count duty logs: %w", err)
	}

	return count, nil
}

func toDutyLogModel(s *domainLog.Segment) *models.DutyLogModel {
	return &models.DutyLogModel{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		DriverID:      s.DriverID,
		TruckID:       s.TruckID,
		DeviceID:      s.DeviceID,
		ExternalID:    s.ExternalID,
		Status:        string(s.Status),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		OdometerStart: s.OdometerStart,
		OdometerEnd:   s.OdometerEnd,
		StartLocation: s.StartLocation,
		EndLocation:   s.EndLocation,
		Certified:     s.Certified,
		RawPayload:    s.RawPayload,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toDutyLogEntity(m *models.DutyLogModel) *domainLog.Segment {
	return &domainLog.Segment{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		DriverID:      m.DriverID,
		TruckID:       m.TruckID,
		DeviceID:      m.DeviceID,
		ExternalID:    m.ExternalID,
		Status:        domainLog.DutyStatus(m.Status),
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		OdometerStart: m.OdometerStart,
		OdometerEnd:   m.OdometerEnd,
		StartLocation: m.StartLocation,
		EndLocation:   m.EndLocation,
		Certified:     m.Certified,
		RawPayload:    m.RawPayload,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toDutyLogEntities(dbModels []models.DutyLogModel) []*domainLog.Segment {
	segments := make([]*domainLog.Segment, len(dbModels))
	for i := range dbModels {
		segments[i] = toDutyLogEntity(&dbModels[i])
	}
	return segments
}
