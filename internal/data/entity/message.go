package entity

import "github.com/google/uuid"

type Message struct {
	BaseNoDelete
	SenderID   uuid.UUID `db:"sender_id"`
	ReceiverID uuid.UUID `db:"receiver_id"`
	Content    string    `db:"content"`
	IsRead     bool      `db:"is_read"`
}
