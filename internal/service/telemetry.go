package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/sub"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TelemetryPublisher emits synthetic sensor readings on a fixed schedule.
// At most one timer is active: Start cancels any prior run before starting,
// Stop is safe to call at any time.
type TelemetryPublisher struct {
	rdb    *redis.Client
	repo   repository.SensorsRepo
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTelemetryPublisher(rdb *redis.Client, repo repository.SensorsRepo, logger *zap.Logger) *TelemetryPublisher {
	return &TelemetryPublisher{rdb: rdb, repo: repo, logger: logger}
}

func (p *TelemetryPublisher) Start(interval time.Duration, sensorCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(ctx, done, interval, sensorCount)
	p.logger.Info("sensor simulator started",
		zap.Duration("interval", interval), zap.Int("sensors", sensorCount))
}

func (p *TelemetryPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *TelemetryPublisher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *TelemetryPublisher) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	p.logger.Info("sensor simulator stopped")
}

func (p *TelemetryPublisher) run(ctx context.Context, done chan struct{}, interval time.Duration, sensorCount int) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.emit(ctx, sensorCount)
		}
	}
}

func (p *TelemetryPublisher) emit(ctx context.Context, sensorCount int) {
	for i := 1; i <= sensorCount; i++ {
		reading := newReading(fmt.Sprintf("sensor-%d", i))

		payload, err := json.Marshal(reading)
		if err != nil {
			continue
		}
		if err := p.rdb.Publish(ctx, sub.SensorDataChannel, payload).Err(); err != nil {
			p.logger.Warn("sensor broadcast failed", zap.Error(err))
		}

		// Losing one synthetic reading is not user-visible; log and keep
		// the schedule running.
		if err := p.repo.Insert(ctx, &reading); err != nil {
			p.logger.Warn("sensor reading not persisted",
				zap.String("sensor_id", reading.SensorID), zap.Error(err))
		}
	}
}

func newReading(sensorID string) domain.SensorReading {
	return domain.SensorReading{
		SensorID:    sensorID,
		Temperature: round2(randomFloat(18, 40)),
		Humidity:    round2(randomFloat(20, 90)),
		Battery:     math.Round(randomFloat(20, 100)),
		Timestamp:   time.Now(),
		Lat:         randomFloat(19.0, 20.0),
		Lng:         randomFloat(72.0, 73.0),
	}
}

func randomFloat(min, max float64) float64 {
	return rand.Float64()*(max-min) + min
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
