package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/shared"
)

func seedLogs(t *testing.T) *shared.AuditLogger {
	t.Helper()
	logger := shared.NewAuditLogger(kv.NewMemory(), kv.JSON)
	entries := []shared.AuditLog{
		mockLog("2024-03-08T08:00:00Z", "Siti (c1)", "product.create", "product", "P003"),
		mockLog("2024-03-09T09:00:00Z", "Siti (c1)", "product.conversion.define", "product", "P003"),
		mockLog("2024-03-10T10:00:00Z", "Budi (a1)", "branch.create", "branch", "B003"),
	}
	for _, entry := range entries {
		if err := logger.Record(context.Background(), entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return logger
}

func TestServiceTimelinePaging(t *testing.T) {
	svc := NewService(seedLogs(t))
	result, err := svc.Timeline(context.Background(), TimelineFilters{
		From:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Page:     1,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected next page 2, got %+v", result.Paging)
	}
	if result.Rows[0].EntityID != "B003" {
		t.Fatalf("expected newest first, got %s", result.Rows[0].EntityID)
	}

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline page 2: %v", err)
	}
	if len(result.Rows) != 1 || result.Paging.HasNext || result.Paging.PrevPage != 1 {
		t.Fatalf("unexpected page 2: %+v", result)
	}

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 9})
	if err != nil {
		t.Fatalf("timeline page 9: %v", err)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(result.Rows))
	}
}

func TestServiceTimelineFilters(t *testing.T) {
	svc := NewService(seedLogs(t))
	result, err := svc.Timeline(context.Background(), TimelineFilters{Entity: "product", Action: "product.conversion"})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Action != "product.conversion.define" {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}

	result, err = svc.Timeline(context.Background(), TimelineFilters{Actor: "budi (a1)"})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Entity != "branch" {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}

	result, err = svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.PageSize != maxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", maxPageSize, result.Paging.PageSize)
	}
}

func TestServiceExportCSV(t *testing.T) {
	svc := NewService(seedLogs(t))
	raw, err := svc.ExportCSV(context.Background(), TimelineFilters{From: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "at,actor,action,entity,entity_id,meta" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2024-03-10T10:00:00Z,Budi (a1),branch.create") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestServiceWithoutSource(t *testing.T) {
	if _, err := NewService(nil).Timeline(context.Background(), TimelineFilters{}); err == nil {
		t.Fatalf("expected error without source")
	}
}

func mockLog(ts, actor, action, entity, entityID string) shared.AuditLog {
	at, _ := time.Parse(time.RFC3339, ts)
	return shared.AuditLog{At: at, Actor: actor, Action: action, Entity: entity, EntityID: entityID}
}
