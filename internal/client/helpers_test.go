package client

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Varun5711/modesta/internal/auth"
	"github.com/Varun5711/modesta/internal/events"
	"github.com/Varun5711/modesta/internal/handlers"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/middleware"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/service"
	"github.com/Varun5711/modesta/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type inbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *inbox) SendVerification(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]string)
	}
	m.tokens[to] = token
	return nil
}

func (m *inbox) latest(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type fixture struct {
	api    *API
	store  *storage.MemoryUserStorage
	hasher *auth.Hasher
	inbox  *inbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, reader handlers.AnalyticsReader) *fixture {
	t.Helper()

	tokens, err := auth.NewJWTManager("client-test-secret", 0)
	require.NoError(t, err)
	quiet := logger.New("test").SetOutput(io.Discard)

	store := storage.NewMemoryUserStorage()
	hasher := auth.NewHasher(bcrypt.MinCost)
	mail := &inbox{}
	svc := service.NewAuthService(store, hasher, tokens, mail, events.Nop{}).WithLogger(quiet)

	var analytics *handlers.AnalyticsHandler
	if reader != nil {
		analytics = handlers.NewAnalyticsHandler(reader)
	}

	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(svc, false),
		AuthMiddleware: middleware.NewAuthMiddleware(svc, "jwt", false),
		Health:         handlers.NewHealthHandler(nil),
		Analytics:      analytics,
		Log:            quiet,
	}))
	t.Cleanup(srv.Close)

	return &fixture{
		api:    NewAPI(srv.URL+"/api", 5*time.Second),
		store:  store,
		hasher: hasher,
		inbox:  mail,
	}
}

func (f *fixture) seed(t *testing.T, email, password string, role usermodel.Role) {
	t.Helper()

	u := &usermodel.User{
		FullName:        "Seeded User",
		Email:           email,
		Credential:      usermodel.NoPassword{},
		Role:            role,
		IsEmailVerified: true,
	}
	if password != "" {
		hash, err := f.hasher.HashPassword(password)
		require.NoError(t, err)
		u.Credential = usermodel.HashedPassword{Hash: hash}
	}
	require.NoError(t, f.store.Create(context.Background(), u))
}
