package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainCompliance "eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/infrastructure/database/postgres/models"
)

// ComplianceEventRepository implements the compliance event repository over
// Postgres.
type ComplianceEventRepository struct {
	db *DB
}

func NewComplianceEventRepository(db *DB) domainCompliance.Repository {
	return &ComplianceEventRepository{db: db}
}

func (r *ComplianceEventRepository) Create(ctx context.Context, e *domainCompliance.Event) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()

	dbModel := toEventModel(e)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create compliance event: %w", err)
	}

	return nil
}

func (r *ComplianceEventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domainCompliance.Event, error) {
	var dbModel models.ComplianceEventModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", eventID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCompliance.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance event: %w", err)
	}

	return toEventEntity(&dbModel), nil
}

func (r *ComplianceEventRepository) Resolve(ctx context.Context, eventID uuid.UUID, note string) error {
	now := time.Now()
	result := r.db.DB.WithContext(ctx).
		Model(&models.ComplianceEventModel{}).
		Where("id = ? AND resolved = false", eventID).
		Updates(map[string]interface{}{
			"resolved":     true,
			"resolved_at":  now,
			"resolve_note": note,
			"updated_at":   now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to resolve compliance event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either missing or already resolved; distinguish for the caller.
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.ComplianceEventModel{}).
			Where("id = ?", eventID).
			Count(&count).Error; err == nil && count > 0 {
			return domainCompliance.ErrAlreadyResolved
		}
		return domainCompliance.ErrEventNotFound
	}

	return nil
}

func (r *ComplianceEventRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, filter *domainCompliance.Filter) ([]*domainCompliance.Event, int64, error) {
	query := r.db.DB.WithContext(ctx).
		Model(&models.ComplianceEventModel{}).
		Where("company_id = ?", companyID)

	if filter != nil {
		if filter.DriverID != nil {
			query = query.Where("driver_id = ?", *filter.DriverID)
		}
		if filter.Type != nil {
			query = query.Where("event_type = ?", string(*filter.Type))
		}
		if filter.Severity != nil {
			query = query.Where("severity = ?", string(*filter.Severity))
		}
		if filter.Resolved != nil {
			query = query.Where("resolved = ?", *filter.Resolved)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count compliance events: %w", err)
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

	var dbModels []models.ComplianceEventModel
	err := query.
		Order("event_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list compliance events: %w", err)
	}

	events := make([]*domainCompliance.Event, len(dbModels))
	for i := range dbModels {
		events[i] = toEventEntity(&dbModels[i])
	}

	return events, total, nil
}

func toEventModel(e *domainCompliance.Event) *models.ComplianceEventModel {
	var metadata []byte
	if len(e.Metadata) > 0 {
		metadata, _ = json.Marshal(e.Metadata)
	}

	return &models.ComplianceEventModel{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		DeviceID:    e.DeviceID,
		TruckID:     e.TruckID,
		DriverID:    e.DriverID,
		EventType:   string(e.Type),
		Severity:    string(e.Severity),
		Title:       e.Title,
		Description: e.Description,
		EventTime:   e.EventTime,
		Resolved:    e.Resolved,
		ResolvedAt:  e.ResolvedAt,
		ResolveNote: e.ResolveNote,
		Metadata:    metadata,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventEntity(m *models.ComplianceEventModel) *domainCompliance.Event {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}

	return &domainCompliance.Event{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		DeviceID:    m.DeviceID,
		TruckID:     m.TruckID,
		DriverID:    m.DriverID,
		Type:        domainCompliance.EventType(m.EventType),
		Severity:    domainCompliance.Severity(m.Severity),
		Title:       m.Title,
		Description: m.Description,
		EventTime:   m.EventTime,
		Resolved:    m.Resolved,
		ResolvedAt:  m.ResolvedAt,
		ResolveNote: m.ResolveNote,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
