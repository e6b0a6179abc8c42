package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/urlutil"
)

// MappingRepo carries the central correctness property of the sync
// protocol: repeated delivery of the same (host_post_id, source_url)
// always lands on the same local post.
type MappingRepo struct {
	db *sql.DB
}

func NewMappingRepo(db *sql.DB) *MappingRepo {
	return &MappingRepo{db: db}
}

// Set overwrites the mapping stored for targetPostID. A stale row for
// the same (host_post_id, source_url) pair, left behind when a mapped
// post was deleted and recreated, is cleared first so the unique pair
// constraint always points at the current post.
func (r *MappingRepo) Set(ctx context.Context, targetPostID, hostPostID int64, sourceURL string) error {
	sourceURL = urlutil.Canonicalize(sourceURL)
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM mappings WHERE host_post_id = ? AND source_url = ? AND target_post_id != ?",
		hostPostID, sourceURL, targetPostID)
	if err != nil {
		return err
	}
	sqlStr := "INSERT INTO mappings (target_post_id, host_post_id, source_url, mtime) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT(target_post_id) DO UPDATE SET host_post_id = excluded.host_post_id, " +
		"source_url = excluded.source_url, mtime = excluded.mtime"
	_, err = r.db.ExecContext(ctx, sqlStr, targetPostID, hostPostID, sourceURL, time.Now().UnixMilli())
	return err
}

// Resolve finds the local post for (hostPostID, sourceURL). The row is
// located through the host id index and the stored source URL is then
// re-checked against the query: a numeric match belonging to a different
// source site must not resolve.
func (r *MappingRepo) Resolve(ctx context.Context, hostPostID int64, sourceURL string) (int64, error) {
	sourceURL = urlutil.Canonicalize(sourceURL)
	where := map[string]interface{}{
		"host_post_id": hostPostID,
		"source_url":   sourceURL,
	}
	sqlStr, args, err := builder.BuildSelect("mappings", where, []string{"target_post_id", "source_url"})
	if err != nil {
		return 0, err
	}
	var targetPostID int64
	var storedURL string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&targetPostID, &storedURL)
	if err == sql.ErrNoRows {
		return 0, appErr.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if storedURL != sourceURL {
		return 0, appErr.ErrNotFound
	}
	return targetPostID, nil
}

func (r *MappingRepo) Delete(ctx context.Context, targetPostID int64) error {
	sqlStr, args, err := builder.BuildDelete("mappings", map[string]interface{}{"target_post_id": targetPostID})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *MappingRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mappings").Scan(&count)
	return count, err
}
