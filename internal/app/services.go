package app

import (
	"log/slog"

	"github.com/omnimarket/omnimarket/internal/analytics"
	"github.com/omnimarket/omnimarket/internal/audit"
	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/httpapi"
	"github.com/omnimarket/omnimarket/internal/inventory"
	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/masterdata/branches"
	"github.com/omnimarket/omnimarket/internal/observability"
	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/sales"
	"github.com/omnimarket/omnimarket/internal/settings"
	"github.com/omnimarket/omnimarket/internal/shared"
	"github.com/omnimarket/omnimarket/internal/visits"
	"github.com/omnimarket/omnimarket/jobs"
)

// ServiceDeps lists what NewServices needs. Everything but Store is optional.
type ServiceDeps struct {
	Store   kv.Store
	Codec   kv.Codec
	Logger  *slog.Logger
	Cache   *analytics.Cache
	Queue   jobs.Enqueuer
	Metrics *observability.Metrics
}

// Services is the wired domain layer.
type Services struct {
	httpapi.Services
	Audit       *shared.AuditLogger
	Idempotency *shared.IdempotencyStore
}

// NewServices wires every domain service over one store. When Queue is set,
// manual adjustments that leave a product low on stock enqueue an alert.
func NewServices(deps ServiceDeps) Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	auditLog := shared.NewAuditLogger(deps.Store, deps.Codec)
	idem := shared.NewIdempotencyStore(deps.Store, deps.Codec)
	journal := stocklog.NewJournal(deps.Store, deps.Codec)
	settingsService := settings.NewService(deps.Store, deps.Codec)

	catalogService := catalog.NewService(catalog.NewRepository(deps.Store, deps.Codec), journal, auditLog, logger)
	var integration inventory.IntegrationHandler
	if deps.Queue != nil {
		integration = jobs.NewLowStockNotifier(deps.Queue, settingsService, logger)
	}
	inventoryService := inventory.NewService(catalogService, journal, integration, logger)
	salesService := sales.NewService(sales.NewRepository(deps.Store, deps.Codec), inventoryService, idem, logger)

	return Services{
		Services: httpapi.Services{
			Catalog:    catalogService,
			Inventory:  inventoryService,
			Sales:      salesService,
			Branches:   branches.NewService(branches.NewRepository(deps.Store, deps.Codec), auditLog),
			Visits:     visits.NewService(deps.Store, deps.Codec),
			Settings:   settingsService,
			Analytics:  analytics.NewService(salesService, catalogService, settingsService, deps.Cache),
			AuditTrail: audit.NewService(auditLog),
			Metrics:    deps.Metrics,
		},
		Audit:       auditLog,
		Idempotency: idem,
	}
}
