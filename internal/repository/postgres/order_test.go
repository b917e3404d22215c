package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Test Helpers ---

func newTestRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewOrderRepository(mock), mock
}

func sampleOrder() *domain.Order {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589*int(time.Millisecond), time.UTC)
	return &domain.Order{
		ID:          "5f1c2f3a-7a27-4a0e-9c61-1f2f7d2b8a10",
		Reference:   domain.NewOrderReference(now),
		UserID:      "user-001",
		Status:      domain.OrderStatusPending,
		TotalAmount: 5997,
		Currency:    "USD",
		CreatedAt:   now,
		UpdatedAt:   now,
		Items: []domain.OrderItem{
			{
				ID:        "item-001",
				OrderID:   "5f1c2f3a-7a27-4a0e-9c61-1f2f7d2b8a10",
				ProductID: 42,
				Name:      "Widget",
				SKU:       "WI-042",
				Price:     2499,
				Quantity:  2,
			},
			{
				ID:        "item-002",
				OrderID:   "5f1c2f3a-7a27-4a0e-9c61-1f2f7d2b8a10",
				ProductID: 7,
				Name:      "Gadget",
				SKU:       "GA-007",
				Price:     999,
				Quantity:  1,
			},
		},
	}
}

func orderColumns() []string {
	return []string{"id", "reference", "user_id", "status", "total_amount", "currency", "created_at", "updated_at"}
}

func itemColumns() []string {
	return []string{"id", "order_id", "product_id", "name", "sku", "price", "quantity"}
}

// --- Create Tests ---

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.Reference, o.UserID, o.Status,
			o.TotalAmount, o.Currency,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	for _, item := range o.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(
				item.ID, item.OrderID, item.ProductID,
				item.Name, item.SKU, item.Price, item.Quantity,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_DuplicateReference(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.Reference, o.UserID, o.Status,
			o.TotalAmount, o.Currency,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "orders_reference_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_BeginError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleOrder())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_ItemInsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.Reference, o.UserID, o.Status,
			o.TotalAmount, o.Currency,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(
			o.Items[0].ID, o.Items[0].OrderID, o.Items[0].ProductID,
			o.Items[0].Name, o.Items[0].SKU, o.Items[0].Price, o.Items[0].Quantity,
		).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order item")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Get Tests ---

func TestOrderRepository_GetByReference(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectQuery("SELECT (.+) FROM orders o").
		WithArgs(o.Reference).
		WillReturnRows(pgxmock.NewRows(orderColumns()).
			AddRow(o.ID, o.Reference, o.UserID, o.Status, o.TotalAmount, o.Currency, o.CreatedAt, o.UpdatedAt))

	itemRows := pgxmock.NewRows(itemColumns())
	for _, it := range o.Items {
		itemRows.AddRow(it.ID, it.OrderID, it.ProductID, it.Name, it.SKU, it.Price, it.Quantity)
	}
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs(o.ID).
		WillReturnRows(itemRows)

	got, err := repo.GetByReference(context.Background(), o.Reference)
	require.NoError(t, err)
	assert.Equal(t, o, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders o").
		WithArgs("missing-id").
		WillReturnRows(pgxmock.NewRows(orderColumns()))

	_, err := repo.GetByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- List Tests ---

func TestOrderRepository_ListByUser(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("user-001", 20, 0).
		WillReturnRows(pgxmock.NewRows(orderColumns()).
			AddRow(o.ID, o.Reference, o.UserID, o.Status, o.TotalAmount, o.Currency, o.CreatedAt, o.UpdatedAt))

	orders, err := repo.ListByUser(context.Background(), "user-001", 20, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.Reference, orders[0].Reference)
	assert.Empty(t, orders[0].Items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("user-009", 20, 0).
		WillReturnRows(pgxmock.NewRows(orderColumns()))

	orders, err := repo.ListByUser(context.Background(), "user-009", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)

	assert.NoError(t, mock.ExpectationsWereMet())
}
