package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
)

type AssetRepo struct {
	db *sql.DB
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

func (r *AssetRepo) Create(ctx context.Context, asset *model.Asset) (int64, error) {
	if asset.Ctime == 0 {
		asset.Ctime = time.Now().UnixMilli()
	}
	data := map[string]interface{}{
		"post_id":  asset.PostID,
		"file_key": asset.FileKey,
		"mime":     asset.Mime,
		"ctime":    asset.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("assets", []map[string]interface{}{data})
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
	asset.ID = id
	return id, nil
}

func (r *AssetRepo) Get(ctx context.Context, id int64) (*model.Asset, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("assets", where, []string{"id", "post_id", "file_key", "mime", "ctime"})
	if err != nil {
		return nil, err
	}
	asset := &model.Asset{}
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&asset.ID, &asset.PostID, &asset.FileKey, &asset.Mime, &asset.Ctime)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}
