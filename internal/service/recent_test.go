package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Repository ---

type mockRecentRepository struct {
	mock.Mock
}

func (m *mockRecentRepository) Load(ctx context.Context, deviceID string) ([]domain.RecentItem, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecentItem), args.Error(1)
}

func (m *mockRecentRepository) Save(ctx context.Context, deviceID string, items []domain.RecentItem) error {
	args := m.Called(ctx, deviceID, items)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestRecency(repo *mockRecentRepository, capacity int) *RecencyService {
	return NewRecencyService(repo, newTestEvents(), newTestLogger(), capacity)
}

func viewOf(productID int64, name string) domain.RecentItem {
	return domain.RecentItem{ProductID: productID, Name: name, Price: 100 * productID}
}

func productIDs(items []domain.RecentItem) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

// --- Tests ---

func TestRecordView_FreshDevice(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(nil).Once()

	items, err := svc.RecordView(ctx, "dev-1", viewOf(1, "Gadget"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.False(t, items[0].ViewedAt.IsZero())

	repo.AssertExpectations(t)
}

func TestRecordView_MostRecentFirstAndDeduped(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(nil)

	for _, id := range []int64{1, 2, 3} {
		_, err := svc.RecordView(ctx, "dev-1", viewOf(id, "p"))
		require.NoError(t, err)
	}

	// Re-viewing an older entry moves it to the front without growing the list.
	items, err := svc.RecordView(ctx, "dev-1", viewOf(1, "p"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2}, productIDs(items))
}

func TestRecordView_HeadRepeatSkipsWrite(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(nil).Once()

	_, err := svc.RecordView(ctx, "dev-1", viewOf(9, "Gizmo"))
	require.NoError(t, err)

	items, err := svc.RecordView(ctx, "dev-1", viewOf(9, "Gizmo"))
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, productIDs(items))

	// Only the first view hit storage.
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestRecordView_CapacityEvictsOldest(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 2)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(nil)

	for _, id := range []int64{1, 2, 3} {
		_, err := svc.RecordView(ctx, "dev-1", viewOf(id, "p"))
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, productIDs(items))
}

func TestRecordView_SaveFailureDropsCachedCopy(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(errors.New("disk full")).Once()

	_, err := svc.RecordView(ctx, "dev-1", viewOf(1, "Gadget"))
	require.Error(t, err)

	// The next read goes back to storage instead of trusting memory.
	repo.On("Load", ctx, "dev-1").Return([]domain.RecentItem{viewOf(7, "Stored")}, nil).Once()

	items, err := svc.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, productIDs(items))

	repo.AssertExpectations(t)
}

func TestList_CorruptPayloadStartsEmpty(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").
		Return(nil, apperrors.CorruptData("recent items", errors.New("invalid character 'x'"))).Once()

	items, err := svc.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	repo.AssertExpectations(t)
}

func TestList_TruncatesOverlongStoredList(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 2)
	ctx := context.Background()

	stored := []domain.RecentItem{viewOf(5, "a"), viewOf(4, "b"), viewOf(3, "c")}
	repo.On("Load", ctx, "dev-1").Return(stored, nil).Once()

	items, err := svc.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, productIDs(items))
}

func TestRecordView_Validation(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	_, err := svc.RecordView(ctx, "", viewOf(1, "p"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.RecordView(ctx, "dev-1", domain.RecentItem{ProductID: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestClear(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Save", ctx, "dev-1", []domain.RecentItem(nil)).Return(nil).Once()
	require.NoError(t, svc.Clear(ctx, "dev-1"))

	items, err := svc.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	repo.AssertExpectations(t)
}

func TestRecordView_KeepsExplicitTimestamp(t *testing.T) {
	repo := new(mockRecentRepository)
	svc := newTestRecency(repo, 10)
	ctx := context.Background()

	repo.On("Load", ctx, "dev-1").Return(nil, apperrors.NotFound("recent items", "dev-1")).Once()
	repo.On("Save", ctx, "dev-1", mock.Anything).Return(nil).Once()

	viewedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	item := viewOf(1, "Gadget")
	item.ViewedAt = viewedAt

	items, err := svc.RecordView(ctx, "dev-1", item)
	require.NoError(t, err)
	assert.Equal(t, viewedAt, items[0].ViewedAt)
}
