package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/location"
	"eld-compliance/internal/logger"
)

var (
	ErrMissingSerial         = errors.New("location message has no serial number")
	ErrMissingCoordinates    = errors.New("location message has no coordinates")
	ErrCoordinatesOutOfRange = errors.New("coordinates out of range")
)

// PingMessage is the wire format trucks publish on the location topic.
// Devices identify themselves by serial number; the processor resolves
// that to a registered device before anything is stored.
type PingMessage struct {
	SerialNumber string   `json:"serial_number"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Speed        *float64 `json:"speed,omitempty"`
	Heading      *float64 `json:"heading,omitempty"`
	Odometer     *float64 `json:"odometer,omitempty"`
	Timestamp    int64    `json:"timestamp"`
}

// Processor batches streamed location pings before writing them. Pings
// arrive far more often than any other record type, so they go through a
// buffered worker pipeline instead of the request path.
type Processor struct {
	devices device.Repository
	pings   location.Repository

	buffer      []*location.Ping
	deviceCache map[string]*device.Device

	batchSize    int
	batchTimeout time.Duration
	workerCount  int

	pingChan chan *PingMessage

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	metrics *MetricsTracker
}

func NewProcessor(devices device.Repository, pings location.Repository, batchSize, workerCount, bufferSize int, batchTimeout time.Duration) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		devices:      devices,
		pings:        pings,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		workerCount:  workerCount,
		buffer:       make([]*location.Ping, 0, batchSize),
		deviceCache:  make(map[string]*device.Device),
		pingChan:     make(chan *PingMessage, bufferSize),
		ctx:          ctx,
		cancel:       cancel,
		metrics:      NewMetricsTracker(),
	}
}

// Start launches the worker pool and the periodic batch flusher.
func (p *Processor) Start() {
	logger.Info("starting location processor",
		zap.Int("workers", p.workerCount),
		zap.Int("batch_size", p.batchSize),
		zap.Duration("batch_timeout", p.batchTimeout),
	)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.pingWorker(i)
	}

	p.wg.Add(1)
	go p.batchFlusher()
}

// Stop halts the pipeline and flushes any buffered pings. The intake
// channel is never closed: a broker callback racing shutdown may still
// call Enqueue, and a send on a closed channel would panic. Workers exit
// on ctx cancellation instead; anything left queued is dropped.
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.flushBatch()
	logger.Info("location processor stopped")
}

// Enqueue queues a raw MQTT payload for processing. Messages are dropped
// when the buffer is full rather than blocking the broker callback.
func (p *Processor) Enqueue(payload []byte) {
	var msg PingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("malformed location message", zap.Error(err))
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return
	}

	select {
	case p.pingChan <- &msg:
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesReceived++
			m.BufferSize = len(p.pingChan)
		})
	case <-p.ctx.Done():
	default:
		logger.Warn("location buffer full, dropping message",
			zap.String("serial_number", msg.SerialNumber),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
	}
}

// Metrics returns a snapshot of the streaming pipeline counters.
func (p *Processor) Metrics() IngestMetrics {
	return p.metrics.Snapshot()
}

func (p *Processor) pingWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case msg := <-p.pingChan:
			start := time.Now()

			if err := p.processPing(msg); err != nil {
				logger.Warn("failed to process location message",
					zap.Int("worker", id),
					zap.String("serial_number", msg.SerialNumber),
					zap.Error(err),
				)
				p.metrics.Update(func(m *IngestMetrics) {
					m.MessagesFailed++
				})
				continue
			}

			p.metrics.Update(func(m *IngestMetrics) {
				m.MessagesProcessed++
				m.LastProcessedAt = time.Now()

				processingTime := time.Since(start)
				if m.AverageProcessingTime == 0 {
					m.AverageProcessingTime = processingTime
				} else {
					m.AverageProcessingTime = (m.AverageProcessingTime + processingTime) / 2
				}
			})

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Processor) processPing(msg *PingMessage) error {
	if msg.SerialNumber == "" {
		return ErrMissingSerial
	}
	if msg.Latitude == nil || msg.Longitude == nil {
		return ErrMissingCoordinates
	}
	if *msg.Latitude < -90 || *msg.Latitude > 90 || *msg.Longitude < -180 || *msg.Longitude > 180 {
		return ErrCoordinatesOutOfRange
	}

	dev, err := p.resolveDevice(msg.SerialNumber)
	if err != nil {
		return err
	}

	recordedAt := time.Unix(msg.Timestamp, 0).UTC()
	if msg.Timestamp > 1e12 {
		recordedAt = time.UnixMilli(msg.Timestamp).UTC()
	}

	ping := &location.Ping{
		ID:         uuid.New(),
		CompanyID:  dev.CompanyID,
		DeviceID:   dev.ID,
		TruckID:    dev.TruckID,
		Latitude:   *msg.Latitude,
		Longitude:  *msg.Longitude,
		Speed:      msg.Speed,
		Heading:    msg.Heading,
		Odometer:   msg.Odometer,
		RecordedAt: recordedAt,
	}

	p.mu.Lock()
	p.buffer = append(p.buffer, ping)
	shouldFlush := len(p.buffer) >= p.batchSize
	p.mu.Unlock()

	if shouldFlush {
		p.flushBatch()
	}

	// Heartbeat is best effort and must never hold up the pipeline.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := p.devices.TouchLastSync(ctx, dev.ID); err != nil {
			logger.Warn("failed to update device last sync",
				zap.String("device_id", dev.ID.String()),
				zap.Error(err),
			)
		}
	}()

	return nil
}

func (p *Processor) resolveDevice(serial string) (*device.Device, error) {
	p.mu.Lock()
	cached, ok := p.deviceCache[serial]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(p.ctx, 3*time.Second)
	defer cancel()

	dev, err := p.devices.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.deviceCache[serial] = dev
	p.mu.Unlock()

	return dev, nil
}

func (p *Processor) batchFlusher() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.flushBatch()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Processor) flushBatch() {
	p.mu.Lock()
	if len(p.buffer) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.buffer
	p.buffer = make([]*location.Ping, 0, p.batchSize)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.pings.InsertBatch(ctx, batch); err != nil {
		logger.Error("failed to flush location batch",
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed += int64(len(batch))
		})
		return
	}

	p.metrics.Update(func(m *IngestMetrics) {
		m.RecordsInserted += int64(len(batch))
	})
}
