package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/domain/messaging"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/dto/response"
	"stay-concierge/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contactListLimit caps role-based contact candidates.
const contactListLimit = 100

var adminRoles = []entity.UserRole{entity.RoleAdmin, entity.RoleSuperAdmin}

type MessageService interface {
	SendMessage(ctx context.Context, actor Actor, req *request.SendMessageRequest) (*response.MessageResponse, error)
	GetInbox(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageResponse], error)
	GetConversation(ctx context.Context, actor Actor, otherUserID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageResponse], error)
	MarkRead(ctx context.Context, actor Actor, messageID string) error
	UnreadCount(ctx context.Context, actor Actor) (*response.UnreadCountResponse, error)
	GetContacts(ctx context.Context, actor Actor) ([]messaging.Contact, error)
}

type messageService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMessageService(repo *repository.Repository, log *zap.Logger) MessageService {
	return &messageService{
		repo: repo,
		log:  log.With(zap.String("service", "message")),
	}
}

func (s *messageService) SendMessage(ctx context.Context, actor Actor, req *request.SendMessageRequest) (*response.MessageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, invalid("message content is empty")
	}

	receiverID, err := parseID(req.ReceiverID, "receiver")
	if err != nil {
		return nil, err
	}
	if receiverID == actor.ID {
		return nil, invalid("cannot message yourself")
	}

	receiver, err := s.repo.User.FindByID(ctx, receiverID)
	if err != nil {
		s.log.Error("Failed to find receiver", zap.Error(err), zap.String("receiver_id", req.ReceiverID))
		return nil, fmt.Errorf("find receiver: %w", err)
	}
	if receiver == nil || !receiver.IsActive {
		return nil, notFound("receiver")
	}

	from, to := actor.Role.MessagingRole(), receiver.Role.MessagingRole()
	if err := messaging.CanMessage(from, to); err != nil {
		metrics.IncPolicyRejection(string(from), string(to))
		s.log.Warn("Message rejected by policy",
			zap.String("sender_id", actor.ID.String()),
			zap.String("sender_role", string(from)),
			zap.String("receiver_role", string(to)),
		)
		return nil, fmt.Errorf("%w: %w", ErrForbidden, err)
	}

	message := &entity.Message{
		BaseNoDelete: entity.NewBaseNoDelete(time.Now()),
		SenderID:     actor.ID,
		ReceiverID:   receiverID,
		Content:      content,
	}

	if err := s.repo.Message.Create(ctx, message); err != nil {
		s.log.Error("Failed to save message", zap.Error(err))
		return nil, fmt.Errorf("send message: %w", err)
	}

	s.log.Info("Message sent",
		zap.String("message_id", message.ID.String()),
		zap.String("sender_id", actor.ID.String()),
		zap.String("receiver_id", receiverID.String()),
	)

	resp := response.MessageToResponse(message)
	return &resp, nil
}

func (s *messageService) GetInbox(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageResponse], error) {
	limit, offset := req.Limit(), req.Offset()

	messages, err := s.repo.Message.FindInbox(ctx, actor.ID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get inbox", zap.Error(err))
		return nil, fmt.Errorf("get inbox: %w", err)
	}

	total, err := s.repo.Message.CountInbox(ctx, actor.ID)
	if err != nil {
		s.log.Error("Failed to count inbox", zap.Error(err))
		return nil, fmt.Errorf("count inbox: %w", err)
	}

	return response.NewPaginatedResponse(toMessageResponses(messages), req.Page, limit, total), nil
}

func (s *messageService) GetConversation(ctx context.Context, actor Actor, otherUserID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageResponse], error) {
	otherID, err := parseID(otherUserID, "user")
	if err != nil {
		return nil, err
	}

	limit, offset := req.Limit(), req.Offset()

	messages, err := s.repo.Message.FindConversation(ctx, actor.ID, otherID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get conversation", zap.Error(err), zap.String("other_id", otherUserID))
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	total, err := s.repo.Message.CountConversation(ctx, actor.ID, otherID)
	if err != nil {
		s.log.Error("Failed to count conversation", zap.Error(err))
		return nil, fmt.Errorf("count conversation: %w", err)
	}

	return response.NewPaginatedResponse(toMessageResponses(messages), req.Page, limit, total), nil
}

func (s *messageService) MarkRead(ctx context.Context, actor Actor, messageID string) error {
	id, err := parseID(messageID, "message")
	if err != nil {
		return err
	}

	message, err := s.repo.Message.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find message", zap.Error(err), zap.String("message_id", messageID))
		return fmt.Errorf("find message: %w", err)
	}
	if message == nil {
		return notFound("message")
	}
	if message.ReceiverID != actor.ID {
		return fmt.Errorf("%w: only the receiver can mark a message read", ErrForbidden)
	}
	if message.IsRead {
		return nil
	}

	if err := s.repo.Message.MarkRead(ctx, id, actor.ID); err != nil {
		s.log.Error("Failed to mark message read", zap.Error(err), zap.String("message_id", messageID))
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, actor Actor) (*response.UnreadCountResponse, error) {
	count, err := s.repo.Message.CountUnread(ctx, actor.ID)
	if err != nil {
		s.log.Error("Failed to count unread messages", zap.Error(err))
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &response.UnreadCountResponse{Unread: count}, nil
}

// GetContacts gathers candidates for the actor's role plus everyone they
// already talk to, keeps those the policy allows and, for travelers and
// owners, makes sure an admin is reachable.
func (s *messageService) GetContacts(ctx context.Context, actor Actor) ([]messaging.Contact, error) {
	candidates, err := s.roleCandidates(ctx, actor)
	if err != nil {
		return nil, err
	}

	partnerIDs, err := s.repo.Message.FindPartnerIDs(ctx, actor.ID)
	if err != nil {
		s.log.Error("Failed to load message partners", zap.Error(err))
		return nil, fmt.Errorf("load message partners: %w", err)
	}
	partners, err := s.repo.User.FindByIDs(ctx, partnerIDs)
	if err != nil {
		s.log.Error("Failed to load partner users", zap.Error(err))
		return nil, fmt.Errorf("load message partners: %w", err)
	}
	candidates = append(candidates, partners...)

	contacts := make([]messaging.Contact, 0, len(candidates))
	for _, u := range candidates {
		if u.ID == actor.ID || !u.IsActive {
			continue
		}
		contacts = append(contacts, toContact(u))
	}

	role := actor.Role.MessagingRole()
	contacts = messaging.FilterContacts(role, contacts)

	if messaging.NeedsAdminFallback(role, contacts) {
		admin, err := s.repo.User.FindFirstByRoles(ctx, adminRoles)
		if err != nil {
			s.log.Warn("Failed to load fallback admin", zap.Error(err))
		} else if admin != nil {
			c := toContact(admin)
			contacts = messaging.WithAdminFallback(role, contacts, &c)
		}
	}

	return contacts, nil
}

func (s *messageService) roleCandidates(ctx context.Context, actor Actor) ([]*entity.User, error) {
	var (
		users []*entity.User
		ids   []uuid.UUID
		err   error
	)

	switch actor.Role {
	case entity.RoleTraveler:
		ids, err = s.repo.Reservation.FindOwnerIDsByGuest(ctx, actor.ID)
	case entity.RoleOwner:
		ids, err = s.repo.Reservation.FindGuestIDsByOwner(ctx, actor.ID)
	case entity.RoleProvider:
		users, err = s.repo.User.FindByRoles(ctx, []entity.UserRole{entity.RoleOwner, entity.RoleAdmin, entity.RoleSuperAdmin}, contactListLimit)
	case entity.RolePartner:
		users, err = s.repo.User.FindByRoles(ctx, adminRoles, contactListLimit)
	case entity.RoleAdmin, entity.RoleSuperAdmin:
		users, err = s.repo.User.FindAll(ctx, contactListLimit, 0)
	}
	if err != nil {
		s.log.Error("Failed to load contact candidates", zap.Error(err), zap.String("role", string(actor.Role)))
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	if len(ids) > 0 {
		users, err = s.repo.User.FindByIDs(ctx, ids)
		if err != nil {
			s.log.Error("Failed to load counterpart users", zap.Error(err))
			return nil, fmt.Errorf("load contacts: %w", err)
		}
	}

	return users, nil
}

func toContact(u *entity.User) messaging.Contact {
	return messaging.Contact{UserID: u.ID, Username: u.Username, Role: u.Role.MessagingRole()}
}

func toMessageResponses(messages []*entity.Message) []response.MessageResponse {
	items := make([]response.MessageResponse, len(messages))
	for i, m := range messages {
		items[i] = response.MessageToResponse(m)
	}
	return items
}
