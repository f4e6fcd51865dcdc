package repository

import (
	"context"
	"sort"
	"sync"

	"civic-portal/internal/domain"

	"github.com/google/uuid"
)

type MemorySensorsRepo struct {
	mu       sync.RWMutex
	readings []domain.SensorReading
}

func NewMemorySensorsRepo() *MemorySensorsRepo {
	return &MemorySensorsRepo{}
}

func (r *MemorySensorsRepo) Insert(_ context.Context, reading *domain.SensorReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = uuid.NewString()
	r.readings = append(r.readings, *reading)
	return nil
}

func (r *MemorySensorsRepo) Latest(_ context.Context, sensorID string, limit int) ([]domain.SensorReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.SensorReading{}
	for _, s := range r.readings {
		if sensorID == "" || s.SensorID == sensorID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemorySensorsRepo) PurgeAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = nil
	return nil
}
