package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/omnimarket/omnimarket/internal/audit"
	"github.com/omnimarket/omnimarket/internal/platform/httpx"
)

func parseTimelineFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	filters := audit.TimelineFilters{
		Actor:  q.Get("actor"),
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}
	for key, dst := range map[string]*time.Time{"from": &filters.From, "to": &filters.To} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, badRequest(key + " must be an RFC3339 timestamp")
		}
		*dst = ts
	}
	for key, dst := range map[string]*int{"page": &filters.Page, "pageSize": &filters.PageSize} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filters, badRequest(key + " must be a non-negative integer")
		}
		*dst = n
	}
	return filters, nil
}

func (h *Handler) auditTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := parseTimelineFilters(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.svc.AuditTrail.Timeline(r.Context(), filters)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) auditExport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseTimelineFilters(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	payload, err := h.svc.AuditTrail.ExportCSV(r.Context(), filters)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
