package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
)

var postColumns = []string{"id", "title", "content", "excerpt", "status", "featured_asset_id", "ctime", "mtime"}

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

func (r *PostRepo) Create(ctx context.Context, post *model.Post) (int64, error) {
	now := time.Now().UnixMilli()
	if post.Ctime == 0 {
		post.Ctime = now
	}
	post.Mtime = now
	data := map[string]interface{}{
		"title":             post.Title,
		"content":           post.Content,
		"excerpt":           post.Excerpt,
		"status":            post.Status,
		"featured_asset_id": post.FeaturedAssetID,
		"ctime":             post.Ctime,
		"mtime":             post.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("posts", []map[string]interface{}{data})
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
	post.ID = id
	return id, nil
}

func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	where := map[string]interface{}{"id": post.ID}
	update := map[string]interface{}{
		"title":   post.Title,
		"content": post.Content,
		"excerpt": post.Excerpt,
		"status":  post.Status,
		"mtime":   time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildUpdate("posts", where, update)
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

func (r *PostRepo) Get(ctx context.Context, id int64) (*model.Post, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("posts", where, postColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	post := &model.Post{}
	if err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Excerpt, &post.Status, &post.FeaturedAssetID, &post.Ctime, &post.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	where := map[string]interface{}{
		"_orderby": "mtime desc",
		"_limit":   []uint{uint(offset), uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("posts", where, postColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := make([]model.Post, 0)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Excerpt, &post.Status, &post.FeaturedAssetID, &post.Ctime, &post.Mtime); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("posts", map[string]interface{}{"id": id})
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

func (r *PostRepo) SetFeaturedAsset(ctx context.Context, postID, assetID int64) error {
	sqlStr, args, err := builder.BuildUpdate("posts",
		map[string]interface{}{"id": postID},
		map[string]interface{}{"featured_asset_id": assetID, "mtime": time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
