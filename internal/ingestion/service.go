package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/logger"
	appErrors "eld-compliance/pkg/errors"
)

// Result is returned to a webhook caller after a successful ingestion.
type Result struct {
	Processed string
	Summary   Summary
}

// Ingestor runs the full webhook pipeline: signature verification,
// identity resolution, normalization, idempotent storage, alert emission.
// Each request is handled statelessly; there is no shared mutable state
// beyond the store, so arbitrary request-level parallelism is safe.
type Ingestor struct {
	verifier *SignatureVerifier
	registry *Registry
	devices  device.Repository
	store    *Store
	metrics  *MetricsTracker

	// seenDeliveries suppresses duplicate webhook deliveries by provider
	// delivery id. Purely a work saver: correctness never depends on it,
	// the store is idempotent either way.
	seenDeliveries cache.Cache[string, struct{}]
}

func NewIngestor(verifier *SignatureVerifier, registry *Registry, devices device.Repository, store *Store) *Ingestor {
	return &Ingestor{
		verifier: verifier,
		registry: registry,
		devices:  devices,
		store:    store,
		metrics:  NewMetricsTracker(),
		seenDeliveries: cache.NewCache[string, struct{}]().
			WithMaxKeys(10000).
			WithTTL(15 * time.Minute),
	}
}

// HandleWebhook processes one signed hardware-provider delivery.
func (i *Ingestor) HandleWebhook(ctx context.Context, provider device.Provider, companyID uuid.UUID, body []byte, signature string) (*Result, error) {
	start := time.Now()
	i.metrics.Update(func(m *IngestMetrics) {
		m.MessagesReceived++
	})

	if err := i.verifier.Verify(provider, body, signature); err != nil {
		i.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return nil, err
	}

	normalizer, err := i.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	obj, err := decodePayload(body)
	if err != nil {
		return nil, appErrors.NewAppError("INVALID_PAYLOAD", "payload is not valid JSON", err)
	}

	providerDeviceID := normalizer.ExtractDeviceID(obj)
	if providerDeviceID == nil {
		return nil, appErrors.NewAppError("INVALID_PAYLOAD", "payload carries no device identifier", nil)
	}

	dev, err := i.devices.GetByProviderDeviceID(ctx, provider, *providerDeviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			logger.Warn("webhook for unknown device",
				zap.String("provider", string(provider)),
				zap.String("provider_device_id", *providerDeviceID),
			)
			return nil, appErrors.ErrDeviceNotFound
		}
		return nil, err
	}

	// An unknown device cannot be trusted to belong to the company the
	// webhook was registered for.
	if dev.CompanyID != companyID {
		logger.Warn("webhook device belongs to another company",
			zap.String("provider", string(provider)),
			zap.String("device_id", dev.ID.String()),
		)
		return nil, appErrors.ErrDeviceNotFound
	}

	batch, err := normalizer.Normalize(obj, body)
	if err != nil {
		return nil, err
	}

	var dedupeKey string
	if batch.DeliveryID != nil {
		dedupeKey = string(provider) + ":" + *batch.DeliveryID
		if _, dup := i.seenDeliveries.Get(dedupeKey); dup {
			logger.Info("duplicate webhook delivery suppressed",
				zap.String("provider", string(provider)),
				zap.String("delivery_id", *batch.DeliveryID),
			)
			return &Result{Processed: batch.Kind}, nil
		}
	}

	summary, err := i.store.Ingest(ctx, dev, batch)
	if err != nil {
		i.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return nil, err
	}

	// Only a delivery that actually made it to the store counts as seen;
	// marking earlier would make a provider retry of a failed write look
	// like a duplicate.
	if dedupeKey != "" {
		i.seenDeliveries.Set(dedupeKey, struct{}{}, 0)
	}

	i.trackProcessed(start, summary)

	return &Result{Processed: batch.Kind, Summary: *summary}, nil
}

// HandleMobileBatch processes one authenticated first-party sync upload.
// Logs upsert on the client record id; locations and events append.
func (i *Ingestor) HandleMobileBatch(ctx context.Context, dev *device.Device, body []byte) (*Result, error) {
	start := time.Now()
	i.metrics.Update(func(m *IngestMetrics) {
		m.MessagesReceived++
	})

	normalizer, err := i.registry.Get(device.ProviderMobileApp)
	if err != nil {
		return nil, err
	}

	obj, err := decodePayload(body)
	if err != nil {
		return nil, appErrors.NewAppError("INVALID_PAYLOAD", "payload is not valid JSON", err)
	}

	batch, err := normalizer.Normalize(obj, body)
	if err != nil {
		return nil, err
	}

	if batch.Empty() {
		i.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		if len(batch.Dropped) > 0 {
			return nil, appErrors.ErrNoValidRecords
		}
		return nil, appErrors.ErrEmptyBatch
	}

	summary, err := i.store.Ingest(ctx, dev, batch)
	if err != nil {
		i.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return nil, err
	}

	i.trackProcessed(start, summary)

	return &Result{Processed: batch.Kind, Summary: *summary}, nil
}

// Metrics returns a snapshot of the ingestion counters.
func (i *Ingestor) Metrics() IngestMetrics {
	return i.metrics.Snapshot()
}

func (i *Ingestor) trackProcessed(start time.Time, summary *Summary) {
	i.metrics.Update(func(m *IngestMetrics) {
		m.MessagesProcessed++
		m.RecordsInserted += int64(summary.LogsStored + summary.PingsStored + summary.EventsStored)
		m.AlertsGenerated += int64(summary.EventsStored)
		m.LastProcessedAt = time.Now()

		processingTime := time.Since(start)
		if m.AverageProcessingTime == 0 {
			m.AverageProcessingTime = processingTime
		} else {
			m.AverageProcessingTime = (m.AverageProcessingTime + processingTime) / 2
		}
	})
}

// Summarize renders a human-readable ingest summary for sync responses.
func (r *Result) Summarize() string {
	s := r.Summary
	return fmt.Sprintf("stored %d logs, %d locations, %d events; %d records dropped, %d unmapped drivers",
		s.LogsStored, s.PingsStored, s.EventsStored, s.Dropped, s.Unmapped)
}
