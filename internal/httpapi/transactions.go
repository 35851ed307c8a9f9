package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/platform/httpx"
	"github.com/omnimarket/omnimarket/internal/sales"
)

// HeaderIdempotencyKey makes a checkout safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

type checkoutLine struct {
	ProductID string `json:"productId"`
	Unit      string `json:"unit"`
	Qty       int    `json:"qty"`
}

type checkoutRequest struct {
	BranchID     string              `json:"branchId"`
	Method       sales.PaymentMethod `json:"paymentMethod"`
	CashReceived decimal.Decimal     `json:"cashReceived"`
	Items        []checkoutLine      `json:"items"`
}

// checkout snapshots every requested product at request time and prices each
// line through a Cart before handing the lines to the sales service. Lines are
// never merged, so the same product may appear in several units.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	items := make([]sales.CartItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Qty < 1 {
			h.fail(w, r, fmt.Errorf("%w: %s", sales.ErrInvalidQuantity, line.ProductID))
			return
		}
		product, err := h.svc.Catalog.Get(r.Context(), line.ProductID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		cart := sales.NewCart()
		cart.Add(product)
		if unit := strings.TrimSpace(line.Unit); unit != "" {
			if err := cart.ChangeUnit(0, unit); err != nil {
				h.fail(w, r, err)
				return
			}
		}
		if err := cart.SetQty(0, line.Qty); err != nil {
			h.fail(w, r, err)
			return
		}
		items = append(items, cart.Items()...)
	}

	tx, err := h.svc.Sales.Checkout(r.Context(), sales.CheckoutInput{
		BranchID:       req.BranchID,
		Items:          items,
		Method:         req.Method,
		CashReceived:   req.CashReceived,
		Actor:          actorFrom(r),
		IdempotencyKey: strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil && tx.ID == "" {
		h.fail(w, r, err)
		return
	}
	if err != nil {
		// stored but not fully deducted; the sale stands
		h.logger.Warn("checkout stored with deduction error", slog.String("transaction_id", tx.ID), slog.Any("error", err))
	}
	h.svc.Metrics.ObserveCheckout(tx.BranchID, string(tx.PaymentMethod))
	h.invalidateAnalytics(r)
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txs, err := h.svc.Sales.List(r.Context(), sales.TransactionFilter{BranchID: r.URL.Query().Get("branchId"), Limit: limit})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func (h *Handler) showTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) invalidateAnalytics(r *http.Request) {
	if h.svc.Analytics == nil {
		return
	}
	if err := h.svc.Analytics.Invalidate(r.Context()); err != nil && !errors.Is(err, r.Context().Err()) {
		h.logger.Warn("invalidate analytics cache", slog.Any("error", err))
	}
}
