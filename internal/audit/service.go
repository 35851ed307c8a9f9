// Package audit reads the generic audit log as a filtered, paged timeline.
package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/omnimarket/omnimarket/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Source menyediakan seluruh catatan audit yang tersimpan.
type Source interface {
	List(ctx context.Context) ([]shared.AuditLog, error)
}

// Result membungkus hasil timeline dengan informasi paging.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}

// Service mengoordinasikan pengambilan data audit.
type Service struct {
	source Source
}

// NewService membuat service audit timeline baru.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Timeline mengambil data audit terbaru lebih dulu dengan paging.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	rows, err := s.filtered(ctx, filters)
	if err != nil {
		return Result{}, err
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + pageSize
	hasNext := end < len(rows)
	if !hasNext {
		end = len(rows)
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows[offset:end], Paging: paging}, nil
}

// Export mengambil seluruh data timeline tanpa paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	return s.filtered(ctx, filters)
}

// ExportCSV renders the filtered timeline as CSV with a header row.
func (s *Service) ExportCSV(ctx context.Context, filters TimelineFilters) ([]byte, error) {
	rows, err := s.Export(ctx, filters)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"at", "actor", "action", "entity", "entity_id", "meta"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		meta := ""
		if len(row.Meta) > 0 {
			raw, err := json.Marshal(row.Meta)
			if err != nil {
				return nil, fmt.Errorf("audit: encode meta: %w", err)
			}
			meta = string(raw)
		}
		record := []string{row.At.UTC().Format(time.RFC3339), row.Actor, row.Action, row.Entity, row.EntityID, meta}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) filtered(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s == nil || s.source == nil {
		return nil, fmt.Errorf("audit: source not configured")
	}
	logs, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	actor := strings.TrimSpace(filters.Actor)
	entity := strings.TrimSpace(filters.Entity)
	action := strings.TrimSpace(filters.Action)
	rows := make([]TimelineRow, 0, len(logs))
	for _, log := range logs {
		if !filters.From.IsZero() && log.At.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && log.At.After(filters.To) {
			continue
		}
		if actor != "" && !strings.EqualFold(log.Actor, actor) {
			continue
		}
		if entity != "" && log.Entity != entity {
			continue
		}
		if action != "" && !strings.HasPrefix(log.Action, action) {
			continue
		}
		rows = append(rows, TimelineRow{
			At:       log.At,
			Actor:    log.Actor,
			Action:   log.Action,
			Entity:   log.Entity,
			EntityID: log.EntityID,
			Meta:     log.Meta,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].At.After(rows[j].At) })
	return rows, nil
}
