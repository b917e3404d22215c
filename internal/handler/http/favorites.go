package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// FavoritesHandler handles HTTP requests for the favorites collection.
type FavoritesHandler struct {
	manager *service.FavoritesManager
	logger  *slog.Logger
}

// NewFavoritesHandler creates a new favorites HTTP handler.
func NewFavoritesHandler(manager *service.FavoritesManager, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		manager: manager,
		logger:  logger,
	}
}

// MembershipResponse reports whether one product is favorited.
type MembershipResponse struct {
	ProductID int64 `json:"product_id"`
	Member    bool  `json:"member"`
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	eng := h.manager.Engine(sessionFromRequest(r))
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: eng.Snapshot()})
}

// Refresh handles POST /api/v1/favorites/refresh
func (h *FavoritesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	eng := h.manager.Engine(sessionFromRequest(r))
	if err := eng.Load(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: eng.Snapshot()})
}

// Membership handles GET /api/v1/favorites/{productID}
func (h *FavoritesHandler) Membership(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	eng := h.manager.Engine(sessionFromRequest(r))
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MembershipResponse{ProductID: productID, Member: eng.IsMember(productID)},
	})
}

// Toggle handles POST /api/v1/favorites/{productID}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	eng := h.manager.Engine(sessionFromRequest(r))
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := eng.Toggle(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// EndSession handles POST /api/v1/session/end, discarding the user's engine
// on logout so the next login starts from an empty view.
func (h *FavoritesHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.manager.Drop(middleware.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, r, apperrors.InvalidInput("productID must be a positive integer"), nil)
		return 0, false
	}
	return id, true
}

func sessionFromRequest(r *http.Request) remote.Session {
	ctx := r.Context()
	token := middleware.TokenFromContext(ctx)
	return remote.Session{
		Token:         token,
		UserID:        middleware.UserIDFromContext(ctx),
		Authenticated: token != "",
	}
}
