package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/inventory"
	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/platform/httpx"
	"github.com/omnimarket/omnimarket/internal/units"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ListFilter{
		BranchID: q.Get("branchId"),
		Search:   q.Get("search"),
	}
	if raw := q.Get("lowStock"); raw != "" {
		lowOnly, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(w, r, badRequest("lowStock must be a boolean"))
			return
		}
		filter.LowStockOnly = lowOnly
	}
	if filter.LowStockOnly {
		threshold, err := h.svc.Settings.LowStockThreshold(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		filter.Threshold = threshold
	}
	products, err := h.svc.Catalog.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var product catalog.Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		h.fail(w, r, err)
		return
	}
	actor := actorFrom(r)
	if product.BranchID == "" {
		product.BranchID = actor.BranchID
	}
	saved, err := h.svc.Catalog.Upsert(r.Context(), catalog.UpsertInput{Product: product, Actor: actor})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidateAnalytics(r)
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Catalog.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	var product catalog.Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		h.fail(w, r, err)
		return
	}
	product.ID = id
	saved, err := h.svc.Catalog.Upsert(r.Context(), catalog.UpsertInput{Product: product, Actor: actorFrom(r)})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidateAnalytics(r)
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.Delete(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidateAnalytics(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) defineConversion(w http.ResponseWriter, r *http.Request) {
	var def units.Definition
	if err := httpx.DecodeJSON(r, &def); err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.svc.Catalog.DefineConversion(r.Context(), catalog.ConversionInput{
		ProductID:  chi.URLParam(r, "id"),
		Definition: def,
		Actor:      actorFrom(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) editConversion(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var def units.Definition
	if err := httpx.DecodeJSON(r, &def); err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.svc.Catalog.EditConversion(r.Context(), catalog.ConversionInput{
		ProductID:  chi.URLParam(r, "id"),
		Index:      index,
		Definition: def,
		Actor:      actorFrom(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) removeConversion(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.svc.Catalog.RemoveConversion(r.Context(), chi.URLParam(r, "id"), index, actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type adjustmentRequest struct {
	Mode         inventory.Mode  `json:"mode"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       stocklog.Reason `json:"reason"`
	CustomReason string          `json:"customReason"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	adj, err := h.svc.Inventory.Adjust(r.Context(), inventory.AdjustmentInput{
		ProductID:    chi.URLParam(r, "id"),
		Mode:         req.Mode,
		Amount:       req.Amount,
		Reason:       req.Reason,
		CustomReason: req.CustomReason,
		Actor:        actorFrom(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidateAnalytics(r)
	httpx.JSON(w, http.StatusCreated, adj)
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	history, err := h.svc.Inventory.History(r.Context(), stocklog.Filter{
		BranchID:  q.Get("branchId"),
		ProductID: q.Get("productId"),
		Limit:     limit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}
