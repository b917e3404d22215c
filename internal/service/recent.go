package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// RecencyService maintains the bounded recently-viewed list for each device.
// The in-memory list is the working copy; every accepted view is persisted
// synchronously so a restart picks up where the device left off.
type RecencyService struct {
	repo     repository.RecentRepository
	events   *event.Producer
	logger   *slog.Logger
	capacity int
	now      func() time.Time

	mu    sync.Mutex
	lists map[string][]domain.RecentItem
}

func NewRecencyService(repo repository.RecentRepository, events *event.Producer, logger *slog.Logger, capacity int) *RecencyService {
	if capacity <= 0 {
		capacity = domain.DefaultRecentCapacity
	}
	return &RecencyService{
		repo:     repo,
		events:   events,
		logger:   logger,
		capacity: capacity,
		now:      time.Now,
		lists:    make(map[string][]domain.RecentItem),
	}
}

// RecordView registers that the device viewed a product. The item moves to
// the front of the list, duplicates collapse, and the oldest entry falls off
// once the list is full. Recording the item already at the front leaves the
// list untouched and skips the write.
func (s *RecencyService) RecordView(ctx context.Context, deviceID string, item domain.RecentItem) ([]domain.RecentItem, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}
	if item.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product id must be positive")
	}
	if item.ViewedAt.IsZero() {
		item.ViewedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 && items[0].ProductID == item.ProductID {
		return s.copyOf(items), nil
	}

	before := len(items)
	_, existed := domain.FindRecent(items, item.ProductID)
	updated := domain.PushRecent(items, item, s.capacity)
	if !existed && len(updated) == before {
		recentEvictionsTotal.Inc()
	}

	if err := s.repo.Save(ctx, deviceID, updated); err != nil {
		// The in-memory copy no longer matches storage. Drop it so the next
		// call reloads whatever actually persisted.
		delete(s.lists, deviceID)
		s.logger.ErrorContext(ctx, "failed to persist recently viewed list",
			"device_id", deviceID, "product_id", item.ProductID, "error", err)
		return nil, fmt.Errorf("save recent items: %w", err)
	}
	s.lists[deviceID] = updated

	s.publishViewed(ctx, deviceID, item)
	return s.copyOf(updated), nil
}

// List returns the device's recently-viewed items, most recent first.
func (s *RecencyService) List(ctx context.Context, deviceID string) ([]domain.RecentItem, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.copyOf(items), nil
}

// Clear removes the device's list from memory and storage.
func (s *RecencyService) Clear(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return apperrors.InvalidInput("device id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, deviceID, nil); err != nil {
		delete(s.lists, deviceID)
		return fmt.Errorf("clear recent items: %w", err)
	}
	s.lists[deviceID] = nil
	return nil
}

// loadLocked returns the device's list, reading through to storage on first
// access. Missing data means a fresh device; corrupt data is logged and
// treated as empty rather than failing the request.
func (s *RecencyService) loadLocked(ctx context.Context, deviceID string) ([]domain.RecentItem, error) {
	if items, ok := s.lists[deviceID]; ok {
		return items, nil
	}

	items, err := s.repo.Load(ctx, deviceID)
	switch {
	case err == nil:
		if len(items) > s.capacity {
			items = items[:s.capacity]
		}
	case errors.Is(err, apperrors.ErrNotFound):
		items = nil
	case errors.Is(err, apperrors.ErrCorruptData):
		recentCorruptPayloadTotal.Inc()
		s.logger.WarnContext(ctx, "recently viewed payload corrupt, starting empty",
			"device_id", deviceID, "error", err)
		items = nil
	default:
		return nil, fmt.Errorf("load recent items: %w", err)
	}

	s.lists[deviceID] = items
	return items, nil
}

func (s *RecencyService) copyOf(items []domain.RecentItem) []domain.RecentItem {
	out := make([]domain.RecentItem, len(items))
	copy(out, items)
	return out
}

func (s *RecencyService) publishViewed(ctx context.Context, deviceID string, item domain.RecentItem) {
	if s.events == nil {
		return
	}
	data := event.ProductViewedData{
		DeviceID:  deviceID,
		ProductID: item.ProductID,
		ViewedAt:  item.ViewedAt,
	}
	if err := s.events.PublishProductViewed(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product viewed event",
			"device_id", deviceID, "product_id", item.ProductID, "error", err)
	}
}
