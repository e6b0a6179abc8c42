package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
)

var auditColumns = []string{
	"id", "host_post_id", "target_post_id", "source_site_url", "target_site_url",
	"action", "status", "message", "user_role", "duration_ms", "created_at",
}

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, entry *model.AuditLogEntry) (int64, error) {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().UnixMilli()
	}
	data := map[string]interface{}{
		"host_post_id":    entry.HostPostID,
		"target_post_id":  entry.TargetPostID,
		"source_site_url": entry.SourceSiteURL,
		"target_site_url": entry.TargetSiteURL,
		"action":          entry.Action,
		"status":          entry.Status,
		"message":         entry.Message,
		"user_role":       entry.UserRole,
		"duration_ms":     entry.DurationMS,
		"created_at":      entry.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("sync_logs", []map[string]interface{}{data})
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	entry.ID = id
	return id, nil
}

type AuditFilter struct {
	HostPostID int64
	Status     string
	Limit      int
	Offset     int
}

func (r *AuditRepo) List(ctx context.Context, filter AuditFilter) ([]model.AuditLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	where := map[string]interface{}{
		"_orderby": "created_at desc",
		"_limit":   []uint{uint(filter.Offset), uint(filter.Limit)},
	}
	if filter.HostPostID != 0 {
		where["host_post_id"] = filter.HostPostID
	}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	sqlStr, args, err := builder.BuildSelect("sync_logs", where, auditColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var entry model.AuditLogEntry
		var targetPostID sql.NullInt64
		if err := rows.Scan(&entry.ID, &entry.HostPostID, &targetPostID, &entry.SourceSiteURL,
			&entry.TargetSiteURL, &entry.Action, &entry.Status, &entry.Message,
			&entry.UserRole, &entry.DurationMS, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if targetPostID.Valid {
			entry.TargetPostID = &targetPostID.Int64
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteOlderThan prunes entries created before cutoff. Only the
// retention job calls this; request paths never delete audit rows.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sync_logs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
