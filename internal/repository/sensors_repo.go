package repository

import (
	"context"

	"civic-portal/internal/domain"
)

type SensorsRepo interface {
	Insert(ctx context.Context, reading *domain.SensorReading) error
	// Latest returns up to limit readings, newest first, optionally
	// filtered to one sensor.
	Latest(ctx context.Context, sensorID string, limit int) ([]domain.SensorReading, error)
	PurgeAll(ctx context.Context) error
}
