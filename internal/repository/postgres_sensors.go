package repository

import (
	"context"
	"strconv"

	"civic-portal/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSensorsRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSensorsRepo(db *pgxpool.Pool) *PostgresSensorsRepo {
	return &PostgresSensorsRepo{db: db}
}

func (r *PostgresSensorsRepo) Insert(ctx context.Context, reading *domain.SensorReading) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO sensor_readings (sensor_id, temperature, humidity, battery, ts, lat, lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, reading.SensorID, reading.Temperature, reading.Humidity, reading.Battery,
		reading.Timestamp, reading.Lat, reading.Lng,
	).Scan(&reading.ID)
}

func (r *PostgresSensorsRepo) Latest(ctx context.Context, sensorID string, limit int) ([]domain.SensorReading, error) {
	q := `
		SELECT id, sensor_id, temperature, humidity, battery, ts, lat, lng
		FROM sensor_readings`
	args := []any{}
	if sensorID != "" {
		q += ` WHERE sensor_id=$1`
		args = append(args, sensorID)
	}
	args = append(args, limit)
	q += ` ORDER BY ts DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []domain.SensorReading{}
	for rows.Next() {
		var s domain.SensorReading
		if err := rows.Scan(&s.ID, &s.SensorID, &s.Temperature, &s.Humidity, &s.Battery, &s.Timestamp, &s.Lat, &s.Lng); err != nil {
			return nil, err
		}
		readings = append(readings, s)
	}
	return readings, rows.Err()
}

func (r *PostgresSensorsRepo) PurgeAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sensor_readings`)
	return err
}
