package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// RecentRepository persists the per-device recently-viewed list as one
// document keyed by device ID. Load returns apperrors.ErrNotFound for an
// unknown device and apperrors.ErrCorruptData when the stored payload cannot
// be decoded.
type RecentRepository interface {
	Load(ctx context.Context, deviceID string) ([]domain.RecentItem, error)
	Save(ctx context.Context, deviceID string, items []domain.RecentItem) error
}

// OrderRepository stores orders and their line items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
}
