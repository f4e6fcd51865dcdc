package domain

import "time"

type ChatMessage struct {
	ID        string            `json:"id"`
	Room      string            `json:"room"`
	From      string            `json:"from"`
	To        *string           `json:"to,omitempty"`
	Text      string            `json:"text"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	FromUser *UserRef `json:"from_user,omitempty"`
	ToUser   *UserRef `json:"to_user,omitempty"`
}
