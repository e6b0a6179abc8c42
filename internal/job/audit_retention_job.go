package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

// AuditRetentionJob prunes audit log rows older than the configured
// number of days. With keepDays <= 0 the log is kept forever.
type AuditRetentionJob struct {
	logs     *repo.AuditRepo
	keepDays int
}

func NewAuditRetentionJob(logs *repo.AuditRepo, keepDays int) *AuditRetentionJob {
	return &AuditRetentionJob{logs: logs, keepDays: keepDays}
}

func (j *AuditRetentionJob) Name() string {
	return "audit_retention"
}

func (j *AuditRetentionJob) Run(ctx context.Context) error {
	if j.logs == nil || j.keepDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -j.keepDays).UnixMilli()
	removed, err := j.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("audit log pruned",
			zap.Int64("removed", removed),
			zap.Int("keep_days", j.keepDays),
		)
	}
	return nil
}
