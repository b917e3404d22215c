package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicFavoriteAdded      = "storefront.favorite.added"
	TopicFavoriteRemoved    = "storefront.favorite.removed"
	TopicFavoriteRolledBack = "storefront.favorite.rolled_back"
	TopicProductViewed      = "storefront.product.viewed"
	TopicOrderCreated       = "storefront.order.created"
)

// Aggregate type constants.
const (
	AggregateTypeFavorite = "favorite"
	AggregateTypeProduct  = "product"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront-bff"

// FavoriteChangedData is the payload for favorite.added / favorite.removed /
// favorite.rolled_back events.
type FavoriteChangedData struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

// ProductViewedData is the payload for a product.viewed event.
type ProductViewedData struct {
	DeviceID  string    `json:"device_id"`
	ProductID int64     `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID     string `json:"order_id"`
	Reference   string `json:"reference"`
	UserID      string `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	ItemCount   int    `json:"item_count"`
}

// Producer publishes storefront domain events to Kafka. Publishing is
// best-effort: callers log failures and continue, the core state paths never
// block on the broker outcome.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new storefront event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishFavoriteChanged publishes a favorite lifecycle event to the topic
// matching the action.
func (p *Producer) PublishFavoriteChanged(ctx context.Context, topic string, data FavoriteChangedData) error {
	evt, err := pkgkafka.NewEvent(topicEventType(topic), strconv.FormatInt(data.ProductID, 10), AggregateTypeFavorite, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create favorite event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, topic, evt)
}

// PublishProductViewed publishes a product.viewed event.
func (p *Producer) PublishProductViewed(ctx context.Context, data ProductViewedData) error {
	evt, err := pkgkafka.NewEvent(topicEventType(TopicProductViewed), strconv.FormatInt(data.ProductID, 10), AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create product viewed event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicProductViewed, evt)
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	data := OrderCreatedData{
		OrderID:     o.ID,
		Reference:   o.Reference,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		ItemCount:   len(o.Items),
	}

	evt, err := pkgkafka.NewEvent(topicEventType(TopicOrderCreated), o.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicOrderCreated, evt)
}

// topicEventType strips the shared prefix so event_type reads
// "favorite.added" for topic "storefront.favorite.added".
func topicEventType(topic string) string {
	const prefix = "storefront."
	if len(topic) > len(prefix) && topic[:len(prefix)] == prefix {
		return topic[len(prefix):]
	}
	return topic
}
