package repo

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/urlutil"
)

const minTargetKeyLen = 16

var targetColumns = []string{"id", "url", "key", "added_at"}

type TargetRepo struct {
	db *sql.DB
}

func NewTargetRepo(db *sql.DB) *TargetRepo {
	return &TargetRepo{db: db}
}

// Add registers a push target. The URL is canonicalized and must be
// unique; when key is empty a fresh one is generated. Targets are never
// mutated in place, changing a key means remove and re-add.
func (r *TargetRepo) Add(ctx context.Context, url, key string) (*model.Target, error) {
	url = urlutil.Canonicalize(url)
	if url == "" {
		return nil, appErr.ErrInvalid
	}
	if key == "" {
		key = GenerateTargetKey()
	}
	if len(key) < minTargetKeyLen {
		return nil, fmt.Errorf("target key must be at least %d characters: %w", minTargetKeyLen, appErr.ErrInvalid)
	}
	if _, err := r.Get(ctx, url); err == nil {
		return nil, appErr.ErrConflict
	}
	target := &model.Target{URL: url, Key: key, AddedAt: time.Now().UnixMilli()}
	data := map[string]interface{}{
		"url":      target.URL,
		"key":      target.Key,
		"added_at": target.AddedAt,
	}
	sqlStr, args, err := builder.BuildInsert("targets", []map[string]interface{}{data})
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	target.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (r *TargetRepo) Remove(ctx context.Context, url string) error {
	sqlStr, args, err := builder.BuildDelete("targets", map[string]interface{}{"url": urlutil.Canonicalize(url)})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *TargetRepo) Get(ctx context.Context, url string) (*model.Target, error) {
	where := map[string]interface{}{"url": urlutil.Canonicalize(url)}
	sqlStr, args, err := builder.BuildSelect("targets", where, targetColumns)
	if err != nil {
		return nil, err
	}
	target := &model.Target{}
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&target.ID, &target.URL, &target.Key, &target.AddedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (r *TargetRepo) List(ctx context.Context) ([]model.Target, error) {
	where := map[string]interface{}{"_orderby": "added_at asc"}
	sqlStr, args, err := builder.BuildSelect("targets", where, targetColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	targets := make([]model.Target, 0)
	for rows.Next() {
		var target model.Target
		if err := rows.Scan(&target.ID, &target.URL, &target.Key, &target.AddedAt); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// GenerateTargetKey returns 48 hex characters of randomness.
func GenerateTargetKey() string {
	bytes := make([]byte, 24)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
