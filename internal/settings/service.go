// Package settings stores application branding and the low-stock threshold.
package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

// DefaultLowStockThreshold applies until a threshold is saved.
const DefaultLowStockThreshold = 10

// AppConfig holds the branding shown by clients.
type AppConfig struct {
	AppName string `json:"appName"`
	AppLogo string `json:"appLogo"`
}

// DefaultAppConfig returns the branding used until one is saved.
func DefaultAppConfig() AppConfig {
	return AppConfig{AppName: "OmniMarket", AppLogo: ""}
}

var (
	// ErrAppNameRequired indicates an empty application name.
	ErrAppNameRequired = errors.New("settings: app name required")
	// ErrInvalidThreshold indicates a negative threshold.
	ErrInvalidThreshold = errors.New("settings: threshold must be >= 0")
)

// Service reads and writes settings documents.
type Service struct {
	config    *kv.Document[AppConfig]
	threshold *kv.Document[int]
}

// NewService builds Service.
func NewService(store kv.Store, codec kv.Codec) *Service {
	return &Service{
		config:    kv.NewDocument(store, codec, kv.KeyAppConfig, DefaultAppConfig),
		threshold: kv.NewDocument(store, codec, kv.KeyLowStockThreshold, func() int { return DefaultLowStockThreshold }),
	}
}

// AppConfig returns the stored branding.
func (s *Service) AppConfig(ctx context.Context) (AppConfig, error) {
	return s.config.Load(ctx)
}

// SaveAppConfig replaces the branding.
func (s *Service) SaveAppConfig(ctx context.Context, cfg AppConfig) (AppConfig, error) {
	cfg.AppName = strings.TrimSpace(cfg.AppName)
	if cfg.AppName == "" {
		return AppConfig{}, ErrAppNameRequired
	}
	if err := s.config.Save(ctx, cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LowStockThreshold returns the stock level at or below which products count as low.
func (s *Service) LowStockThreshold(ctx context.Context) (int, error) {
	return s.threshold.Load(ctx)
}

// SetLowStockThreshold stores a new threshold.
func (s *Service) SetLowStockThreshold(ctx context.Context, threshold int) error {
	if threshold < 0 {
		return ErrInvalidThreshold
	}
	return s.threshold.Save(ctx, threshold)
}
