package wire

import (
	"stay-concierge/internal/adaptor"
	"stay-concierge/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireMessage(r chi.Router, messageHandler *adaptor.MessageHandler, rt *routes) {
	limiter := middleware.NewUserRateLimiter(rt.config.RateLimit)

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(rt.auth)

		r.With(middleware.RateLimit(limiter, rt.log)).Post("/", messageHandler.SendMessage)
		r.Get("/", messageHandler.GetInbox)
		r.Get("/unread-count", messageHandler.UnreadCount)
		r.Get("/contacts", messageHandler.GetContacts)
		r.Get("/with/{userId}", messageHandler.GetConversation)
		r.Put("/{id}/read", messageHandler.MarkRead)
	})
}
