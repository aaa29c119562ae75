package repository

import (
	"context"
	"errors"
	"fmt"

	"stay-concierge/internal/data/entity"
	"stay-concierge/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*entity.Message, error)
	CountInbox(ctx context.Context, receiverID uuid.UUID) (int64, error)
	FindConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*entity.Message, error)
	CountConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, receiverID uuid.UUID) error
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error)

	// FindPartnerIDs returns every user the given user has exchanged messages with.
	FindPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type messageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMessageRepository(db database.PgxIface, log *zap.Logger) MessageRepository {
	return &messageRepository{
		db:  db,
		log: log.With(zap.String("repository", "message")),
	}
}

const messageColumns = `id, sender_id, receiver_id, content, is_read, created_at, updated_at`

func scanMessage(row rowScanner) (*entity.Message, error) {
	var m entity.Message
	err := row.Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&m.IsRead,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) collect(rows pgx.Rows) ([]*entity.Message, error) {
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message row", zap.Error(err))
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) Create(ctx context.Context, m *entity.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.SenderID,
		m.ReceiverID,
		m.Content,
		m.IsRead,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create message",
			zap.Error(err),
			zap.String("sender_id", m.SenderID.String()),
			zap.String("receiver_id", m.ReceiverID.String()),
		)
		return fmt.Errorf("create message from %s: %w", m.SenderID.String(), err)
	}

	return nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	m, err := scanMessage(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find message by ID", zap.Error(err), zap.String("message_id", id.String()))
		return nil, fmt.Errorf("find message by ID %s: %w", id.String(), err)
	}

	return m, nil
}

func (r *messageRepository) FindInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, receiverID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find inbox",
			zap.Error(err),
			zap.String("receiver_id", receiverID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find inbox of %s: %w", receiverID.String(), err)
	}

	return r.collect(rows)
}

func (r *messageRepository) CountInbox(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1`, receiverID)
}

func (r *messageRepository) FindConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, otherID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find conversation",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("other_id", otherID.String()),
		)
		return nil, fmt.Errorf("find conversation %s/%s: %w", userID.String(), otherID.String(), err)
	}

	return r.collect(rows)
}

func (r *messageRepository) CountConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*) FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`
	return r.count(ctx, query, userID, otherID)
}

func (r *messageRepository) MarkRead(ctx context.Context, id, receiverID uuid.UUID) error {
	query := `UPDATE messages SET is_read = TRUE, updated_at = NOW() WHERE id = $1 AND receiver_id = $2`

	result, err := r.db.Exec(ctx, query, id, receiverID)
	if err != nil {
		r.log.Error("Failed to mark message read", zap.Error(err), zap.String("message_id", id.String()))
		return fmt.Errorf("mark message %s read: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("message %s not found", id.String())
	}

	return nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`, receiverID)
}

func (r *messageRepository) FindPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT receiver_id FROM messages WHERE sender_id = $1
		UNION
		SELECT sender_id FROM messages WHERE receiver_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find message partners", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find message partners of %s: %w", userID.String(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect message partners: %w", err)
	}
	return ids, nil
}

func (r *messageRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count messages", zap.Error(err))
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
