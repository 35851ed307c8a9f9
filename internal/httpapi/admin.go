package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omnimarket/omnimarket/internal/masterdata/branches"
	"github.com/omnimarket/omnimarket/internal/platform/httpx"
	"github.com/omnimarket/omnimarket/internal/settings"
	"github.com/omnimarket/omnimarket/internal/visits"
)

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Branches.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var branch branches.Branch
	if err := httpx.DecodeJSON(r, &branch); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.svc.Branches.Create(r.Context(), branch, actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	var branch branches.Branch
	if err := httpx.DecodeJSON(r, &branch); err != nil {
		h.fail(w, r, err)
		return
	}
	branch.ID = chi.URLParam(r, "id")
	if err := h.svc.Branches.Update(r.Context(), branch, actorFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branch)
}

func (h *Handler) deleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Branches.Delete(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visitRequest struct {
	ShopName  string   `json:"shopName"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes"`
	PhotoURL  string   `json:"photoUrl"`
}

func (h *Handler) recordVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	visit, err := h.svc.Visits.Record(r.Context(), visits.RecordInput{
		ShopName:  req.ShopName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
		PhotoURL:  req.PhotoURL,
		Actor:     actorFrom(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, visit)
}

func (h *Handler) listVisits(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.svc.Visits.List(r.Context(), visits.Filter{MotoristName: r.URL.Query().Get("motorist"), Limit: limit})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Settings.AppConfig(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var cfg settings.AppConfig
	if err := httpx.DecodeJSON(r, &cfg); err != nil {
		h.fail(w, r, err)
		return
	}
	saved, err := h.svc.Settings.SaveAppConfig(r.Context(), cfg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

type lowStockBody struct {
	Threshold int `json:"threshold"`
}

func (h *Handler) showLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := h.svc.Settings.LowStockThreshold(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lowStockBody{Threshold: threshold})
}

func (h *Handler) saveLowStock(w http.ResponseWriter, r *http.Request) {
	var body lowStockBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Settings.SetLowStockThreshold(r.Context(), body.Threshold); err != nil {
		h.fail(w, r, err)
		return
	}
	h.invalidateAnalytics(r)
	httpx.JSON(w, http.StatusOK, body)
}

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	if h.svc.Analytics == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "analytics not configured")
		return
	}
	summary, err := h.svc.Analytics.Summary(r.Context(), r.URL.Query().Get("branchId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) insightDigest(w http.ResponseWriter, r *http.Request) {
	if h.svc.Analytics == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "analytics not configured")
		return
	}
	digest, err := h.svc.Analytics.InsightDigest(r.Context(), r.URL.Query().Get("branchId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, digest)
}
