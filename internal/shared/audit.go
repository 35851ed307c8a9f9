package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

// AuditLog represents a generic record of a catalog or master data change.
type AuditLog struct {
	Actor    string         `json:"actor"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// AuditLogger appends records to the audit_logs document.
type AuditLogger struct {
	mu  sync.Mutex
	doc *kv.Document[[]AuditLog]
	now func() time.Time
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(store kv.Store, codec kv.Codec) *AuditLogger {
	return &AuditLogger{
		doc: kv.NewDocument(store, codec, kv.KeyAuditLogs, func() []AuditLog { return []AuditLog{} }),
		now: time.Now,
	}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.At.IsZero() {
		log.At = l.now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	logs, err := l.doc.Load(ctx)
	if err != nil {
		return err
	}
	return l.doc.Save(ctx, append(logs, log))
}

// List returns every recorded entry, oldest first.
func (l *AuditLogger) List(ctx context.Context) ([]AuditLog, error) {
	if l == nil {
		return nil, errors.New("audit logger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.Load(ctx)
}
