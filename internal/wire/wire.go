// internal/wire/wire.go
package wire

import (
	"net/http"

	"stay-concierge/internal/adaptor"
	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/usecase"
	"stay-concierge/pkg/metrics"
	"stay-concierge/pkg/middleware"
	"stay-concierge/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router *chi.Mux
}

// routes carries what every feature wiring needs.
type routes struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger

	auth      func(http.Handler) http.Handler
	ownerOnly func(http.Handler) http.Handler
	adminOnly func(http.Handler) http.Handler
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, availabilityCache cache.AvailabilityCache, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, availabilityCache, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, repo, config, logger),
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, repo *repository.Repository, config *utils.Config, logger *zap.Logger) *chi.Mux {
	metrics.Register()

	r := chi.NewRouter()

	// Recover paling luar supaya panic di middleware lain juga tertangkap
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.CORS))

	rt := &routes{
		repo:      repo,
		config:    config,
		log:       logger,
		auth:      middleware.AuthSession(repo.Session, logger),
		ownerOnly: middleware.RequireRoles(logger, entity.RoleOwner, entity.RoleAdmin, entity.RoleSuperAdmin),
		adminOnly: middleware.Admin(logger),
	}

	wireAuth(r, handler.Auth, rt)
	wireUser(r, handler.User, rt)
	wireProperty(r, handler.Property, rt)
	wireReservation(r, handler.Reservation, rt)
	wireMessage(r, handler.Message, rt)
	wireReview(r, handler.Review, rt)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
