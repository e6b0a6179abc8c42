package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

// Auditor writes the durable record of every sync/translate attempt.
// A failed audit write never fails the operation it describes.
type Auditor struct {
	logs    *repo.AuditRepo
	siteURL string
}

func NewAuditor(logs *repo.AuditRepo, siteURL string) *Auditor {
	return &Auditor{logs: logs, siteURL: siteURL}
}

type AuditTimer struct {
	auditor *Auditor
	role    string
	start   time.Time
}

func (a *Auditor) Start(role string) *AuditTimer {
	return &AuditTimer{auditor: a, role: role, start: time.Now()}
}

type AuditEvent struct {
	Action        string
	HostPostID    int64
	TargetPostID  *int64
	SourceSiteURL string
	TargetSiteURL string
	Message       string
}

func (t *AuditTimer) Success(ctx context.Context, ev AuditEvent) {
	t.record(ctx, model.AuditStatusSuccess, ev)
}

func (t *AuditTimer) Error(ctx context.Context, ev AuditEvent) {
	t.record(ctx, model.AuditStatusError, ev)
}

func (t *AuditTimer) record(ctx context.Context, status string, ev AuditEvent) {
	sourceURL := ev.SourceSiteURL
	if sourceURL == "" {
		sourceURL = t.auditor.siteURL
	}
	entry := &model.AuditLogEntry{
		HostPostID:    ev.HostPostID,
		TargetPostID:  ev.TargetPostID,
		SourceSiteURL: sourceURL,
		TargetSiteURL: ev.TargetSiteURL,
		Action:        ev.Action,
		Status:        status,
		Message:       ev.Message,
		UserRole:      t.role,
		DurationMS:    time.Since(t.start).Milliseconds(),
	}
	if _, err := t.auditor.logs.Insert(ctx, entry); err != nil {
		logutil.GetLogger(ctx).Warn("audit log write failed",
			zap.String("action", ev.Action),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}
