package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	jobmetrics "github.com/omnimarket/omnimarket/internal/jobs"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesJobMetrics(t *testing.T) {
	metrics := NewMetrics()
	jobs := jobmetrics.NewMetrics(metrics.Registerer())
	_ = jobs.Track("inventory:low_stock_scan").End(nil)
	jobs.SetLowStock("B001", 3)

	body := scrape(t, metrics)
	if !strings.Contains(body, `omnimarket_jobs_total{job="inventory:low_stock_scan",status="success"} 1`) {
		t.Fatalf("expected job run to be counted, got: %s", body)
	}
	if !strings.Contains(body, `omnimarket_low_stock_products{branch="B001"} 3`) {
		t.Fatalf("expected low stock gauge, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsBody := scrape(t, metrics)
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestObserveCheckout(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCheckout("B001", "CASH")
	metrics.ObserveCheckout("B001", "CASH")

	body := scrape(t, metrics)
	if !strings.Contains(body, `omnimarket_checkouts_total{branch="B001",method="CASH"} 2`) {
		t.Fatalf("expected checkout counter, got: %s", body)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveCheckout("B001", "CASH")
}
