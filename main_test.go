package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eshop/internal/config"
	"eshop/internal/models"
	"eshop/internal/services"
	"eshop/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func memoryConfig() *config.Config {
	return &config.Config{
		AppEnv:         config.EnvDevelopment,
		DatabaseDriver: config.DriverMemory,
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		AdminEmail:     "Admin@Example.com",
		AdminPassword:  "password123",
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	log := zap.NewNop()

	repos, err := openRepositories(cfg)
	require.NoError(t, err)

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, services.EventOrderCreated, mock.AnythingOfType("services.OrderEvent")).Return(nil).Once()

	orderMetrics := metrics.NewOrderMetrics()
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	orderService := services.NewOrderService(repos, publisher, orderMetrics, log)

	require.NoError(t, seedAdmin(ctx, cfg, repos.Users, authService, log))
	// Seeding twice is a no-op.
	require.NoError(t, seedAdmin(ctx, cfg, repos.Users, authService, log))

	product := &models.Product{Name: "Pen", Price: decimal.RequireFromString("1.25")}
	require.NoError(t, repos.Products.Create(ctx, product))

	app := newApp(authService, orderService, orderMetrics, log)

	resp, _ := doRequest(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	claims, err := authService.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	resp, raw = doRequest(t, app, http.MethodPost, "/api/v1/orders/", login.Token, map[string]any{
		"line_items":        []map[string]any{{"quantity": 4, "product": product.ID}},
		"shipping_address1": "1 Main St",
		"city":              "Springfield",
		"country":           "US",
		"phone":             "555-0100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doRequest(t, app, http.MethodGet, "/api/v1/orders/get/totalsales", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"totalSales":"5.00"}`, string(raw))

	resp, raw = doRequest(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "eshop_orders_placed_total 1")

	publisher.AssertExpectations(t)
}

func TestApp_UnknownRoute(t *testing.T) {
	cfg := memoryConfig()
	repos, err := openRepositories(cfg)
	require.NoError(t, err)
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	app := newApp(authService, services.NewOrderService(repos, nil, nil, nil), metrics.NewOrderMetrics(), zap.NewNop())

	resp, raw := doRequest(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NotFoundError")
}
