package domain

import "time"

// SensorReading is a synthetic telemetry sample. Readings are immutable once
// written; only an admin purge removes them.
type SensorReading struct {
	ID          string    `json:"id,omitempty"`
	SensorID    string    `json:"sensorId"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Battery     float64   `json:"battery"`
	Timestamp   time.Time `json:"timestamp"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
}
