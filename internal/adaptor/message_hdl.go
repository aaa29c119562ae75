package adaptor

import (
	"net/http"

	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/usecase"
	"stay-concierge/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MessageHandler struct {
	service usecase.MessageService
	log     *zap.Logger
}

func NewMessageHandler(service usecase.MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		log:     log.With(zap.String("handler", "message")),
	}
}

// SendMessage handles POST /api/messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message, err := h.service.SendMessage(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "send message")
		return
	}

	utils.ResponseCreated(w, "Message sent", message)
}

// GetInbox handles GET /api/messages
func (h *MessageHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	messages, err := h.service.GetInbox(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get inbox")
		return
	}

	utils.ResponseSuccess(w, "success", messages)
}

// GetConversation handles GET /api/messages/with/{userId}
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	messages, err := h.service.GetConversation(r.Context(), actor, chi.URLParam(r, "userId"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get conversation")
		return
	}

	utils.ResponseSuccess(w, "success", messages)
}

// MarkRead handles PUT /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "mark message read")
		return
	}

	utils.ResponseSuccess(w, "Message marked as read", nil)
}

// UnreadCount handles GET /api/messages/unread-count
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "count unread messages")
		return
	}

	utils.ResponseSuccess(w, "success", count)
}

// GetContacts handles GET /api/messages/contacts
func (h *MessageHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	contacts, err := h.service.GetContacts(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "get contacts")
		return
	}

	utils.ResponseSuccess(w, "success", contacts)
}
