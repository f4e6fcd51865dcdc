package domain

import (
	"strings"
	"time"

	"civic-portal/internal/xerrors"
)

// RequestKind distinguishes the two lifecycle record types. They share one
// lifecycle but keep distinct field sets at the API boundary.
type RequestKind string

const (
	KindComplaint RequestKind = "complaint"
	KindService   RequestKind = "service"
)

// Status of a lifecycle record. New records always start as pending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// ParseStatus normalizes a caller-supplied status to lowercase and rejects
// anything outside the four lifecycle states.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return st, nil
	default:
		return "", xerrors.ErrInvalidStatus
	}
}

// Location is free-text for service requests (Address only) and optionally
// structured for complaints.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

// Request is the persisted shape shared by complaints and service requests.
type Request struct {
	ID          string      `json:"id"`
	Kind        RequestKind `json:"-"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Location    Location    `json:"location"`
	Attachments []string    `json:"attachments"`

	// Service requests only.
	PaymentRequired bool `json:"payment_required,omitempty"`

	UserID string  `json:"user_id"`
	Status Status  `json:"status"`
	Remark *string `json:"remark,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Owner is joined in for display on reads; nil on writes.
	Owner *UserRef `json:"user,omitempty"`
}
