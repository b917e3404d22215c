package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/remote"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ToggleAction identifies the direction a toggle resolved to.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// ToggleResult is the outcome of a confirmed toggle.
type ToggleResult struct {
	ProductID int64        `json:"product_id"`
	Action    ToggleAction `json:"action"`
	Member    bool         `json:"member"`
}

// FavoritesEngine owns the local observable view of one session's favorites
// collection and keeps it converging toward the remote collection service.
//
// Toggles apply optimistically: the view changes before the network call, and
// a failed call restores the exact prior state. While a call for a given
// product is in flight, further toggles of that product are rejected, so the
// remote service observes the session's operations on each product in order.
//
// The mutex is never held across network I/O.
type FavoritesEngine struct {
	client remote.CollectionClient
	events *event.Producer
	logger *slog.Logger

	mu      sync.Mutex
	session remote.Session
	items   []domain.CollectionItem
	members map[int64]struct{}
	pending map[int64]struct{}
	loaded  bool
}

// NewFavoritesEngine creates an engine bound to the given session. The view
// starts empty and unloaded.
func NewFavoritesEngine(client remote.CollectionClient, events *event.Producer, logger *slog.Logger, session remote.Session) *FavoritesEngine {
	return &FavoritesEngine{
		client:  client,
		events:  events,
		logger:  logger,
		session: session,
		members: make(map[int64]struct{}),
		pending: make(map[int64]struct{}),
	}
}

// Session returns the session the engine is currently bound to.
func (e *FavoritesEngine) Session() remote.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// ResetSession rebinds the engine to a new session and clears the view, so
// one user's collection can never bleed into another's. In-flight operations
// from the previous session detect the token change and leave the new view
// alone.
func (e *FavoritesEngine) ResetSession(session remote.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session
	e.items = nil
	e.members = make(map[int64]struct{})
	e.loaded = false
}

// IsMember reports whether the product is in the current local view.
func (e *FavoritesEngine) IsMember(productID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.members[productID]
	return ok
}

// Snapshot returns a copy of the current view. Pending IDs are sorted so the
// result is stable for callers that render or assert on it.
func (e *FavoritesEngine) Snapshot() domain.CollectionView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := domain.CollectionView{
		Items:   make([]domain.CollectionItem, len(e.items)),
		Loading: !e.loaded,
	}
	copy(view.Items, e.items)
	for id := range e.pending {
		view.Pending = append(view.Pending, id)
	}
	sort.Slice(view.Pending, func(i, j int) bool { return view.Pending[i] < view.Pending[j] })
	return view
}

// Load fetches the authoritative collection and replaces the local view
// wholesale. Unauthenticated sessions are a no-op. On failure the previous
// view stays intact and the error is returned.
func (e *FavoritesEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	session := e.session
	e.mu.Unlock()

	if !session.Authenticated {
		return nil
	}

	items, err := e.client.List(ctx, session.Token)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to load favorites", "user_id", session.UserID, "error", err)
		return fmt.Errorf("load favorites: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The session changed while the request was in flight. The reply belongs
	// to the old credential, discard it.
	if e.session.Token != session.Token {
		return nil
	}

	e.items = make([]domain.CollectionItem, len(items))
	copy(e.items, items)
	e.members = make(map[int64]struct{}, len(items))
	for _, it := range items {
		e.members[it.ID] = struct{}{}
	}
	e.loaded = true
	return nil
}

// EnsureLoaded loads the collection once per session; later calls are cheap.
func (e *FavoritesEngine) EnsureLoaded(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if loaded {
		return nil
	}
	return e.Load(ctx)
}

// Toggle flips the membership of a product. The local view updates
// immediately; the matching remote call confirms or rolls back the change.
//
// A toggle for a product that already has a call in flight is rejected with a
// conflict error rather than queued, which keeps per-product operations
// strictly ordered on the wire.
func (e *FavoritesEngine) Toggle(ctx context.Context, productID int64) (*ToggleResult, error) {
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id must be positive")
	}

	e.mu.Lock()
	if !e.session.Authenticated {
		e.mu.Unlock()
		return nil, apperrors.Unauthenticated("favorites require an authenticated session")
	}
	if _, busy := e.pending[productID]; busy {
		e.mu.Unlock()
		favoritesToggleTotal.WithLabelValues("rejected", "conflict").Inc()
		return nil, apperrors.Conflict(fmt.Sprintf("toggle for product %d is already in flight", productID))
	}
	e.pending[productID] = struct{}{}
	token := e.session.Token
	userID := e.session.UserID

	_, wasMember := e.members[productID]

	// Optimistic apply while still holding the lock.
	var removed domain.CollectionItem
	var removedIndex int
	if wasMember {
		removedIndex = domain.FindItemIndex(e.items, productID)
		removed = e.items[removedIndex]
		e.items = append(e.items[:removedIndex], e.items[removedIndex+1:]...)
		delete(e.members, productID)
	} else {
		e.items = append([]domain.CollectionItem{domain.NewStubItem(productID)}, e.items...)
		e.members[productID] = struct{}{}
	}
	e.mu.Unlock()

	defer e.clearPending(productID)

	if wasMember {
		return e.confirmRemove(ctx, token, userID, productID, removed, removedIndex)
	}
	return e.confirmAdd(ctx, token, userID, productID)
}

func (e *FavoritesEngine) confirmRemove(ctx context.Context, token, userID string, productID int64, removed domain.CollectionItem, removedIndex int) (*ToggleResult, error) {
	if err := e.client.Remove(ctx, token, productID); err != nil {
		e.restoreItem(token, removed, removedIndex)
		favoritesToggleTotal.WithLabelValues("remove", "error").Inc()
		favoritesRollbackTotal.WithLabelValues("remove").Inc()
		e.logger.ErrorContext(ctx, "favorite removal rolled back",
			"user_id", userID, "product_id", productID, "error", err)
		e.publishFavoriteEvent(ctx, event.TopicFavoriteRolledBack, userID, productID, "remove", err.Error())
		return nil, err
	}

	favoritesToggleTotal.WithLabelValues("remove", "success").Inc()
	e.publishFavoriteEvent(ctx, event.TopicFavoriteRemoved, userID, productID, "remove", "")
	return &ToggleResult{ProductID: productID, Action: ToggleRemoved, Member: false}, nil
}

func (e *FavoritesEngine) confirmAdd(ctx context.Context, token, userID string, productID int64) (*ToggleResult, error) {
	if err := e.client.Add(ctx, token, productID); err != nil {
		e.dropStub(token, productID)
		favoritesToggleTotal.WithLabelValues("add", "error").Inc()
		favoritesRollbackTotal.WithLabelValues("add").Inc()
		e.logger.ErrorContext(ctx, "favorite addition rolled back",
			"user_id", userID, "product_id", productID, "error", err)
		e.publishFavoriteEvent(ctx, event.TopicFavoriteRolledBack, userID, productID, "add", err.Error())

		// A transport failure is ambiguous: the server may have committed the
		// add before the connection dropped. Reconcile against the authority
		// so the view does not stay wrong until the next full load.
		if errors.Is(err, apperrors.ErrRemoteUnavail) {
			if lerr := e.Load(ctx); lerr != nil {
				e.logger.WarnContext(ctx, "favorites reconcile after ambiguous failure did not complete",
					"user_id", userID, "error", lerr)
			}
		}
		return nil, err
	}

	favoritesToggleTotal.WithLabelValues("add", "success").Inc()
	e.publishFavoriteEvent(ctx, event.TopicFavoriteAdded, userID, productID, "add", "")

	// The stub carries only the ID. Backfill real fields from the authority;
	// if the reload fails the stub stays until the next successful load.
	if err := e.Load(ctx); err != nil {
		e.logger.WarnContext(ctx, "favorites backfill reload failed, stub entry retained",
			"user_id", userID, "product_id", productID, "error", err)
	}
	return &ToggleResult{ProductID: productID, Action: ToggleAdded, Member: true}, nil
}

// restoreItem undoes an optimistic removal, putting the original item back at
// its original position with its original fields.
func (e *FavoritesEngine) restoreItem(token string, item domain.CollectionItem, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Token != token {
		return
	}
	if _, ok := e.members[item.ID]; ok {
		// A load completed in between and already brought the item back.
		return
	}
	if index > len(e.items) {
		index = len(e.items)
	}
	e.items = append(e.items[:index], append([]domain.CollectionItem{item}, e.items[index:]...)...)
	e.members[item.ID] = struct{}{}
}

// dropStub undoes an optimistic addition.
func (e *FavoritesEngine) dropStub(token string, productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Token != token {
		return
	}
	idx := domain.FindItemIndex(e.items, productID)
	if idx >= 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
	}
	delete(e.members, productID)
}

func (e *FavoritesEngine) clearPending(productID int64) {
	e.mu.Lock()
	delete(e.pending, productID)
	e.mu.Unlock()
}

func (e *FavoritesEngine) publishFavoriteEvent(ctx context.Context, topic, userID string, productID int64, action, reason string) {
	if e.events == nil {
		return
	}
	data := event.FavoriteChangedData{
		UserID:    userID,
		ProductID: productID,
		Action:    action,
		Reason:    reason,
	}
	if err := e.events.PublishFavoriteChanged(ctx, topic, data); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish favorite event",
			"topic", topic, "product_id", productID, "error", err)
	}
}

// FavoritesManager hands out the engine bound to each user session. Engines
// are created lazily and reset when the same user shows up with a different
// credential.
type FavoritesManager struct {
	client remote.CollectionClient
	events *event.Producer
	logger *slog.Logger

	mu      sync.Mutex
	engines map[string]*FavoritesEngine
}

func NewFavoritesManager(client remote.CollectionClient, events *event.Producer, logger *slog.Logger) *FavoritesManager {
	return &FavoritesManager{
		client:  client,
		events:  events,
		logger:  logger,
		engines: make(map[string]*FavoritesEngine),
	}
}

// Engine returns the engine for the session's user, creating it on first use.
// A changed token means a fresh login: the engine is reset so the next load
// starts from an empty view.
func (m *FavoritesManager) Engine(session remote.Session) *FavoritesEngine {
	m.mu.Lock()
	defer m.mu.Unlock()

	eng, ok := m.engines[session.UserID]
	if !ok {
		eng = NewFavoritesEngine(m.client, m.events, m.logger, session)
		m.engines[session.UserID] = eng
		return eng
	}
	if eng.Session().Token != session.Token {
		eng.ResetSession(session)
	}
	return eng
}

// Drop discards the user's engine, typically on logout.
func (m *FavoritesManager) Drop(userID string) {
	m.mu.Lock()
	delete(m.engines, userID)
	m.mu.Unlock()
}
