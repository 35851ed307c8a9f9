// Package httpapi exposes the OmniMarket services as a JSON API.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omnimarket/omnimarket/internal/analytics"
	"github.com/omnimarket/omnimarket/internal/audit"
	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/inventory"
	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/masterdata/branches"
	"github.com/omnimarket/omnimarket/internal/observability"
	"github.com/omnimarket/omnimarket/internal/platform/httpx"
	"github.com/omnimarket/omnimarket/internal/sales"
	"github.com/omnimarket/omnimarket/internal/settings"
	"github.com/omnimarket/omnimarket/internal/shared"
	"github.com/omnimarket/omnimarket/internal/units"
	"github.com/omnimarket/omnimarket/internal/visits"
)

// Services groups the domain services served by Handler. Analytics and
// Metrics are optional.
type Services struct {
	Catalog    *catalog.Service
	Inventory  *inventory.Service
	Sales      *sales.Service
	Branches   *branches.Service
	Visits     *visits.Service
	Settings   *settings.Service
	Analytics  *analytics.Service
	AuditTrail *audit.Service
	Metrics    *observability.Metrics
}

// Handler serves the /api/v1 routes.
type Handler struct {
	logger *slog.Logger
	svc    Services
	errs   *httpx.ErrorMapper
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, svc Services) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, svc: svc, errs: newErrorMapper()}
}

// MountRoutes registers API routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(ActorMiddleware)

	r.Get("/health", h.health)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}", h.showProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Post("/products/{id}/conversions", h.defineConversion)
	r.Put("/products/{id}/conversions/{index}", h.editConversion)
	r.Delete("/products/{id}/conversions/{index}", h.removeConversion)
	r.Post("/products/{id}/adjustments", h.adjustStock)
	r.Get("/adjustments", h.listAdjustments)

	r.Post("/transactions", h.checkout)
	r.Get("/transactions", h.listTransactions)
	r.Get("/transactions/{id}", h.showTransaction)

	r.Get("/branches", h.listBranches)
	r.Post("/branches", h.createBranch)
	r.Put("/branches/{id}", h.updateBranch)
	r.Delete("/branches/{id}", h.deleteBranch)

	r.Get("/visits", h.listVisits)
	r.Post("/visits", h.recordVisit)

	r.Get("/settings", h.showSettings)
	r.Put("/settings", h.saveSettings)
	r.Get("/settings/low-stock", h.showLowStock)
	r.Put("/settings/low-stock", h.saveLowStock)

	r.Get("/dashboard/summary", h.dashboardSummary)
	r.Get("/dashboard/insight-digest", h.insightDigest)

	r.Get("/audit-logs", h.auditTimeline)
	r.Get("/audit-logs/export", h.auditExport)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := h.errs.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	h.errs.Respond(w, err)
}

func newErrorMapper() *httpx.ErrorMapper {
	notFound := func(err error) httpx.Rule {
		return httpx.Rule{Err: err, Status: http.StatusNotFound, Title: "Not Found"}
	}
	invalid := func(err error) httpx.Rule {
		return httpx.Rule{Err: err, Status: http.StatusBadRequest, Title: "Validation Failed"}
	}
	unprocessable := func(err error) httpx.Rule {
		return httpx.Rule{Err: err, Status: http.StatusUnprocessableEntity, Title: "Unprocessable"}
	}
	return httpx.NewErrorMapper(
		notFound(catalog.ErrProductNotFound),
		notFound(sales.ErrTransactionNotFound),
		notFound(branches.ErrBranchNotFound),
		notFound(units.ErrConversionIndex),
		notFound(shared.ErrNotFound),
		httpx.Rule{Err: shared.ErrIdempotencyConflict, Status: http.StatusConflict, Title: "Duplicate Request"},
		httpx.Rule{Err: units.ErrDuplicateUnitName, Status: http.StatusConflict, Title: "Duplicate Unit"},
		unprocessable(sales.ErrInsufficientPayment),
		unprocessable(sales.ErrEmptyCart),
		unprocessable(units.ErrReferenceNotFound),
		unprocessable(units.ErrUnitNotFound),
		invalid(units.ErrUnitNameRequired),
		invalid(units.ErrInvalidMultiplier),
		invalid(units.ErrInvalidQuantity),
		invalid(units.ErrInvalidPrice),
		invalid(catalog.ErrInvalidProduct),
		invalid(catalog.ErrNegativeStock),
		invalid(catalog.ErrBranchRequired),
		invalid(inventory.ErrInvalidMode),
		invalid(inventory.ErrProductRequired),
		invalid(stocklog.ErrInvalidReason),
		invalid(sales.ErrInvalidPaymentMethod),
		invalid(sales.ErrInvalidQuantity),
		invalid(sales.ErrBranchRequired),
		invalid(branches.ErrInvalidBranch),
		invalid(visits.ErrInvalidVisit),
		invalid(settings.ErrAppNameRequired),
		invalid(settings.ErrInvalidThreshold),
		invalid(shared.ErrValidation),
	)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, badRequest("limit must be a non-negative integer")
	}
	return limit, nil
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, badRequest("conversion index must be an integer")
	}
	return index, nil
}
