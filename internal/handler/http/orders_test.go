package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Mock OrderRepository
// ============================================================================

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func setupOrdersRouter(repo *mockOrderRepository) *chi.Mux {
	svc := service.NewOrderService(repo, testEventProducer(), testLogger())
	handler := NewOrdersHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(stubValidator))

		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{orderID}", handler.GetByID)
		r.Get("/reference/{reference}", handler.GetByReference)
	})
	return r
}

func httptestRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func record(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Tests
// ============================================================================

func TestOrdersCreate(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrdersRouter(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

	body := map[string]any{
		"currency": "USD",
		"items": []map[string]any{
			{"product_id": 42, "name": "Widget", "sku": "WI-042", "price": 2499, "quantity": 2},
		},
	}

	req := httptestRequest(t, http.MethodPost, "/api/v1/orders/", "tok:user-1", body)
	rec := record(router, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	ref := data["reference"].(string)
	assert.Len(t, ref, domain.OrderReferenceLength)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, float64(4998), data["total_amount"])
	assert.Equal(t, "user-1", data["user_id"])

	repo.AssertExpectations(t)
}

func TestOrdersCreate_ValidationFailure(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrdersRouter(repo)

	body := map[string]any{"currency": "US DOLLARS", "items": []map[string]any{}}

	req := httptestRequest(t, http.MethodPost, "/api/v1/orders/", "tok:user-1", body)
	rec := record(router, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrdersCreate_MissingAuth(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrdersRouter(repo)

	req := httptestRequest(t, http.MethodPost, "/api/v1/orders/", "", map[string]any{})
	rec := record(router, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrdersGetByReference(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrdersRouter(repo)

	ref := "OD20260314092653589"
	repo.On("GetByReference", mock.Anything, ref).
		Return(&domain.Order{ID: "9b7e2c34-9f31-4a96-9d0a-0f61d3a9b801", Reference: ref, UserID: "user-1"}, nil).Once()

	req := httptestRequest(t, http.MethodGet, "/api/v1/orders/reference/"+ref, "tok:user-1", nil)
	rec := record(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, ref, data["reference"])
}

func TestOrdersGetByReference_Malformed(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrdersRouter(repo)

	req := httptestRequest(t, http.MethodGet, "/api/v1/orders/reference/garbage", "tok:user-1", nil)
	rec := record(router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
}
