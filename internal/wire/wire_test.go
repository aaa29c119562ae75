package wire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSessionRepo) CleanExpiredSessions(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestApp(t *testing.T, sessions *mockSessionRepo) *App {
	t.Helper()
	config := &utils.Config{
		RateLimit: utils.RateLimitConfig{MessagesPerSecond: 1, MessageBurst: 1},
	}
	repo := &repository.Repository{Session: sessions}
	return Wiring(repo, cache.NewAvailabilityCache(nil, 0, zap.NewNop()), config, zap.NewNop())
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, new(mockSessionRepo))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "stay_concierge_http_requests_total")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t, new(mockSessionRepo))

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/logout"},
		{http.MethodGet, "/api/user/profile"},
		{http.MethodPost, "/api/reservations"},
		{http.MethodGet, "/api/messages"},
		{http.MethodGet, "/api/messages/contacts"},
		{http.MethodPost, "/api/properties"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodDelete, "/api/reviews/" + uuid.NewString()},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}")))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRoleGuards(t *testing.T) {
	sessions := new(mockSessionRepo)
	token := uuid.NewString()
	sessions.On("FindValidSession", mock.Anything, token).Return(&entity.Session{
		UserID:     uuid.New(),
		UserRole:   entity.RoleTraveler,
		UserActive: true,
	}, nil)
	app := newTestApp(t, sessions)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/properties"},
		{http.MethodGet, "/api/owner/reservations"},
		{http.MethodPut, "/api/reservations/" + uuid.NewString() + "/status"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPut, "/api/admin/users/" + uuid.NewString() + "/role"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer "+token)

			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}
