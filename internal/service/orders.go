package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CreateOrderInput carries the validated request to place an order.
type CreateOrderInput struct {
	UserID   string                 `json:"-"`
	Currency string                 `json:"currency" validate:"required,len=3,alpha"`
	Items    []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// OrderService creates and reads orders. Each order receives a reference code
// derived from its creation instant; the database enforces its uniqueness.
type OrderService struct {
	repo   repository.OrderRepository
	events *event.Producer
	logger *slog.Logger
	now    func() time.Time
}

func NewOrderService(repo repository.OrderRepository, events *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Create places a new order in pending status.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.Unauthenticated("orders require an authenticated session")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	createdAt := s.now()
	order := &domain.Order{
		ID:        uuid.New().String(),
		Reference: domain.NewOrderReference(createdAt),
		UserID:    input.UserID,
		Status:    domain.OrderStatusPending,
		Currency:  input.Currency,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	for _, it := range input.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	order.TotalAmount = domain.ComputeTotal(order.Items)

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to create order",
			"user_id", input.UserID, "reference", order.Reference, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order created event",
				"order_id", order.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "order created",
		"order_id", order.ID, "reference", order.Reference, "total_amount", order.TotalAmount)
	return order, nil
}

// GetByID fetches an order owned by the user.
func (s *OrderService) GetByID(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, apperrors.InvalidInput("invalid order id")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// Hide the order's existence from other users.
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// GetByReference fetches an order by its reference code.
func (s *OrderService) GetByReference(ctx context.Context, userID, reference string) (*domain.Order, error) {
	if _, err := domain.ParseOrderReference(reference); err != nil {
		return nil, apperrors.InvalidInput("invalid order reference")
	}

	order, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", reference)
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
