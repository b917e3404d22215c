package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// RecentHandler handles HTTP requests for the recently-viewed list. All
// routes require the X-Device-ID header; the list is device-scoped and works
// without a login.
type RecentHandler struct {
	service *service.RecencyService
	logger  *slog.Logger
}

// NewRecentHandler creates a new recently-viewed HTTP handler.
func NewRecentHandler(svc *service.RecencyService, logger *slog.Logger) *RecentHandler {
	return &RecentHandler{
		service: svc,
		logger:  logger,
	}
}

// RecordViewRequest is the JSON request body for recording a product view.
type RecordViewRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price" validate:"gte=0"`
	SalePrice int64  `json:"sale_price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
}

// List handles GET /api/v1/recent
func (h *RecentHandler) List(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFromContext(r.Context())

	items, err := h.service.List(r.Context(), deviceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// RecordView handles POST /api/v1/recent
func (h *RecentHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFromContext(r.Context())

	var req RecordViewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items, err := h.service.RecordView(r.Context(), deviceID, domain.RecentItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		SKU:       req.SKU,
		Price:     req.Price,
		SalePrice: req.SalePrice,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// Clear handles DELETE /api/v1/recent
func (h *RecentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFromContext(r.Context())

	if err := h.service.Clear(r.Context(), deviceID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
