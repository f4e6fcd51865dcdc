package domain

import "time"

// Photo is a geotagged upload. Coordinates come from the client when
// supplied, otherwise from EXIF data in the file itself.
type Photo struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	FileName      string     `json:"file_name"`
	OriginalName  string     `json:"original_name,omitempty"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	LocationLabel string     `json:"location_label,omitempty"`
	UploadedBy    *string    `json:"uploaded_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Uploader *UserRef `json:"uploader,omitempty"`
}
