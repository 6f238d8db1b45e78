package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/alerts"
	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/driver"
	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/domain/location"
	"eld-compliance/internal/logger"
)

// Summary reports what one ingestion pass stored.
type Summary struct {
	LogsStored   int
	PingsStored  int
	EventsStored int
	Dropped      int
	Unmapped     int
}

// Store applies a normalized batch to the persistent layer. Duty logs
// upsert on (device, client record id) so retried offline queues and
// redelivered webhooks stay idempotent. Location writes are chunked to
// bound the work done in any single request.
type Store struct {
	mappings          driver.Repository
	logs              dutylog.Repository
	pings             location.Repository
	devices           device.Repository
	emitter           *alerts.Emitter
	locationBatchSize int
}

func NewStore(
	devices device.Repository,
	mappings driver.Repository,
	logs dutylog.Repository,
	pings location.Repository,
	emitter *alerts.Emitter,
	locationBatchSize int,
) *Store {
	if locationBatchSize <= 0 {
		locationBatchSize = 100
	}
	return &Store{
		devices:           devices,
		mappings:          mappings,
		logs:              logs,
		pings:             pings,
		emitter:           emitter,
		locationBatchSize: locationBatchSize,
	}
}

// Ingest applies the batch on behalf of the resolved device. Records with
// an unmapped provider driver id are stored with the driver unset for
// later dispatcher triage; dropping telemetry is worse than storing it
// unattributed.
func (s *Store) Ingest(ctx context.Context, dev *device.Device, batch *Batch) (*Summary, error) {
	summary := &Summary{Dropped: len(batch.Dropped)}

	// One resolution per distinct provider driver id per batch.
	resolved := make(map[string]*uuid.UUID)
	resolve := func(providerDriverID *string) *uuid.UUID {
		if providerDriverID == nil || *providerDriverID == "" {
			return nil
		}
		if driverID, seen := resolved[*providerDriverID]; seen {
			return driverID
		}

		driverID, err := s.mappings.ResolveDriver(ctx, dev.ID, dev.Provider, *providerDriverID)
		if err != nil {
			if !errors.Is(err, driver.ErrMappingNotFound) {
				logger.Error("driver resolution failed",
					zap.String("device_id", dev.ID.String()),
					zap.String("provider_driver_id", *providerDriverID),
					zap.Error(err),
				)
			}
			resolved[*providerDriverID] = nil
			summary.Unmapped++
			return nil
		}

		id := driverID
		resolved[*providerDriverID] = &id
		return &id
	}

	for i := range batch.Logs {
		rec := &batch.Logs[i]
		segment := &dutylog.Segment{
			CompanyID:     dev.CompanyID,
			DriverID:      resolve(rec.ProviderDriverID),
			TruckID:       dev.TruckID,
			DeviceID:      dev.ID,
			ExternalID:    rec.ExternalID,
			Status:        rec.Status,
			StartTime:     *rec.StartTime,
			EndTime:       rec.EndTime,
			OdometerStart: rec.OdometerStart,
			OdometerEnd:   rec.OdometerEnd,
			StartLocation: rec.StartLocation,
			EndLocation:   rec.EndLocation,
			Certified:     rec.Certified,
			RawPayload:    rec.Raw,
		}

		if err := s.logs.UpsertByExternalID(ctx, segment); err != nil {
			return summary, fmt.Errorf("failed to store duty log: %w", err)
		}
		summary.LogsStored++
	}

	if len(batch.Pings) > 0 {
		stored, err := s.storePings(ctx, dev, batch.Pings, resolve)
		summary.PingsStored = stored
		if err != nil {
			return summary, err
		}
	}

	for i := range batch.Events {
		rec := &batch.Events[i]
		event := &compliance.Event{
			CompanyID:   dev.CompanyID,
			DeviceID:    &dev.ID,
			TruckID:     dev.TruckID,
			DriverID:    resolve(rec.ProviderDriverID),
			Type:        rec.Type,
			Severity:    rec.Severity,
			Title:       rec.Title,
			Description: rec.Description,
			EventTime:   *rec.EventTime,
			Metadata:    rec.Metadata,
		}
		if err := s.emitter.Emit(ctx, event); err != nil {
			return summary, fmt.Errorf("failed to store compliance event: %w", err)
		}
		summary.EventsStored++
	}

	// Every successful ingestion refreshes the device heartbeat.
	if err := s.devices.TouchLastSync(ctx, dev.ID); err != nil {
		logger.Warn("failed to touch device heartbeat",
			zap.String("device_id", dev.ID.String()),
			zap.Error(err),
		)
	}

	return summary, nil
}

// storePings writes pings in bounded chunks so one oversized batch cannot
// hold a connection for an unbounded write.
func (s *Store) storePings(ctx context.Context, dev *device.Device, records []PingRecord, resolve func(*string) *uuid.UUID) (int, error) {
	stored := 0
	for start := 0; start < len(records); start += s.locationBatchSize {
		end := start + s.locationBatchSize
		if end > len(records) {
			end = len(records)
		}

		chunk := make([]*location.Ping, 0, end-start)
		for i := start; i < end; i++ {
			rec := &records[i]
			chunk = append(chunk, &location.Ping{
				CompanyID:  dev.CompanyID,
				DeviceID:   dev.ID,
				TruckID:    dev.TruckID,
				DriverID:   resolve(rec.ProviderDriverID),
				Latitude:   *rec.Latitude,
				Longitude:  *rec.Longitude,
				Speed:      rec.Speed,
				Heading:    rec.Heading,
				Odometer:   rec.Odometer,
				RecordedAt: *rec.RecordedAt,
			})
		}

		if err := s.pings.InsertBatch(ctx, chunk); err != nil {
			return stored, fmt.Errorf("failed to store location chunk: %w", err)
		}
		stored += len(chunk)
	}

	return stored, nil
}
