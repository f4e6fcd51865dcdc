package repository

import (
	"context"
	"encoding/json"

	"civic-portal/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresChatRepo struct {
	db *pgxpool.Pool
}

func NewPostgresChatRepo(db *pgxpool.Pool) *PostgresChatRepo {
	return &PostgresChatRepo{db: db}
}

func (r *PostgresChatRepo) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	meta, err := json.Marshal(msg.Meta)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO chat_messages (room, from_user, to_user, text, meta)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, msg.Room, msg.From, msg.To, msg.Text, meta,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *PostgresChatRepo) History(ctx context.Context, room string) ([]domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.room, m.from_user, m.to_user, m.text, m.meta, m.created_at,
		       f.name, f.email,
		       t.name, t.email
		FROM chat_messages m
		JOIN users f ON f.id = m.from_user
		LEFT JOIN users t ON t.id = m.to_user
		WHERE m.room=$1
		ORDER BY m.created_at ASC
	`, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var (
			m       domain.ChatMessage
			meta    []byte
			fName   string
			fEmail  string
			tName   *string
			tEmail  *string
		)
		if err := rows.Scan(&m.ID, &m.Room, &m.From, &m.To, &m.Text, &meta, &m.CreatedAt,
			&fName, &fEmail, &tName, &tEmail); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &m.Meta)
		}
		m.FromUser = &domain.UserRef{ID: m.From, Name: fName, Email: fEmail}
		if m.To != nil && tName != nil && tEmail != nil {
			m.ToUser = &domain.UserRef{ID: *m.To, Name: *tName, Email: *tEmail}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
