package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitaQuote/internal/application/quotation"
	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/handlers"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/middleware"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

type routerAuthenticator struct{}

func (routerAuthenticator) Authorize(_ context.Context, token string) (*redis.Session, error) {
	if token != "tok-valid" {
		return nil, errors.New(errors.ErrCodeSessionExpired, "session expired")
	}
	return &redis.Session{Token: token, UserID: uuid.New(), Username: "ana"}, nil
}

type routerQuoteService struct{}

func (routerQuoteService) ComputeQuotes(_ context.Context, username string, _ quote.Request) (*quotation.Response, error) {
	return &quotation.Response{
		QuoteID:    "q-router",
		ComputedAt: time.Now().UTC(),
		Result: quote.Result{
			Current: []quote.Quote{{
				GroupKey:  quote.GroupKey{Company: "VidaCare"},
				PerCapita: decimal.RequireFromString("150"),
			}},
			Expired: []quote.Quote{},
		},
	}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(RouterConfig{
		QuoteHandler:   handlers.NewQuoteHandler(routerQuoteService{}, nil),
		HealthHandler:  handlers.NewHealthHandler("test", nil),
		AuthMiddleware: middleware.NewAuthMiddleware(routerAuthenticator{}, logging.NewNopLogger()),
		CORS:           middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		Logger:         logging.NewNopLogger(),
		Metrics:        prometheus.New(),
	})
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterGuardsAPIGroup(t *testing.T) {
	router := newTestRouter()

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterAuthorizedQuote(t *testing.T) {
	router := newTestRouter()

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	req.Header.Set("Authorization", "Bearer tok-valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "q-router")
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerLifecycle(t *testing.T) {
	srv := NewServer(config.ServerConfig{
		Port:            0,
		ShutdownTimeout: time.Second,
		MaxBodySize:     1 << 20,
	}, newTestRouter(), logging.NewNopLogger())

	require.NotNil(t, srv.Handler())
	assert.NoError(t, srv.Stop(context.Background()))
}
