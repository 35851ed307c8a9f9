// Package visits records field visits made by motorists to retail shops.
package visits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/shared"
)

// Visit is one check-in at a shop.
type Visit struct {
	ID           string    `json:"id"`
	MotoristName string    `json:"motoristName"`
	ShopName     string    `json:"shopName"`
	Timestamp    time.Time `json:"timestamp"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Notes        string    `json:"notes"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
}

// RecordInput describes a new visit. The location is required.
type RecordInput struct {
	ShopName  string   `validate:"required"`
	Latitude  *float64 `validate:"required,latitude"`
	Longitude *float64 `validate:"required,longitude"`
	Notes     string
	PhotoURL  string
	Actor     shared.Actor
}

// Filter narrows listings.
type Filter struct {
	MotoristName string
	Limit        int
}

// ErrInvalidVisit indicates a visit without shop name or location.
var ErrInvalidVisit = errors.New("visits: shop name and location required")

// Service stores visits under the visits key.
type Service struct {
	mu        sync.Mutex
	doc       *kv.Document[[]Visit]
	validator *validator.Validate
	now       func() time.Time
}

// NewService builds Service.
func NewService(store kv.Store, codec kv.Codec) *Service {
	return &Service{
		doc:       kv.NewDocument(store, codec, kv.KeyVisits, func() []Visit { return []Visit{} }),
		validator: validator.New(),
		now:       time.Now,
	}
}

// Record appends a visit stamped with the current time and the actor's name.
func (s *Service) Record(ctx context.Context, input RecordInput) (Visit, error) {
	input.ShopName = strings.TrimSpace(input.ShopName)
	if err := s.validator.Struct(input); err != nil {
		return Visit{}, fmt.Errorf("%w: %v", ErrInvalidVisit, err)
	}
	visit := Visit{
		ID:           "V-" + strings.ToUpper(uuid.NewString()),
		MotoristName: input.Actor.Label(),
		ShopName:     input.ShopName,
		Timestamp:    s.now().UTC(),
		Latitude:     *input.Latitude,
		Longitude:    *input.Longitude,
		Notes:        input.Notes,
		PhotoURL:     input.PhotoURL,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.doc.Load(ctx)
	if err != nil {
		return Visit{}, err
	}
	if err := s.doc.Save(ctx, append(all, visit)); err != nil {
		return Visit{}, err
	}
	return visit, nil
}

// List returns visits oldest first; a positive Limit keeps the most recent.
func (s *Service) List(ctx context.Context, filter Filter) ([]Visit, error) {
	s.mu.Lock()
	all, err := s.doc.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Visit, 0, len(all))
	for _, v := range all {
		if filter.MotoristName != "" && v.MotoristName != filter.MotoristName {
			continue
		}
		out = append(out, v)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}
