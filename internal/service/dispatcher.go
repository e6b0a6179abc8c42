package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/filestore"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/signature"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

// Dispatcher pushes post changes from a host node to every registered
// target. Each target gets its own signed request; one target failing
// never blocks the others, and no push failure propagates to the
// caller that changed the post.
type Dispatcher struct {
	cfg     *config.Config
	posts   *repo.PostRepo
	terms   *repo.TermRepo
	assets  *repo.AssetRepo
	targets *repo.TargetRepo
	store   filestore.Store
	auditor *Auditor
	client  *http.Client
}

func NewDispatcher(cfg *config.Config, posts *repo.PostRepo, terms *repo.TermRepo,
	assets *repo.AssetRepo, targets *repo.TargetRepo, store filestore.Store, auditor *Auditor) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		posts:   posts,
		terms:   terms,
		assets:  assets,
		targets: targets,
		store:   store,
		auditor: auditor,
		client:  &http.Client{Timeout: time.Duration(cfg.Host.PushTimeoutSec) * time.Second},
	}
}

type pushReply struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	TargetPostID int64  `json:"target_post_id"`
}

// Push sends the post to every target and returns how many pushes
// succeeded and failed. Per-target outcomes land in the audit log, not
// in the returned error.
func (d *Dispatcher) Push(ctx context.Context, postID int64, action string) (succeeded, failed int, err error) {
	if d.cfg.Role != config.RoleHost {
		return 0, 0, appErr.ErrRoleMismatch
	}
	var post *model.Post
	if action != model.SyncActionDelete {
		post, err = d.posts.Get(ctx, postID)
		if err != nil {
			return 0, 0, err
		}
		if post.Status != model.PostStatusPublish {
			return 0, 0, nil
		}
	}
	targets, err := d.targets.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, target := range targets {
		if pushErr := d.pushToTarget(ctx, postID, post, &target, action); pushErr != nil {
			logutil.GetLogger(ctx).Error("push to target failed",
				zap.Int64("post_id", postID),
				zap.String("target", target.URL),
				zap.String("action", action),
				zap.Error(pushErr),
			)
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}

func (d *Dispatcher) pushToTarget(ctx context.Context, postID int64, post *model.Post, target *model.Target, action string) error {
	timer := d.auditor.Start("admin")
	ev := AuditEvent{
		Action:        auditAction(action),
		HostPostID:    postID,
		TargetSiteURL: target.URL,
	}
	body, err := d.buildBody(ctx, postID, post, action)
	if err == nil {
		err = d.send(ctx, target, body)
	}
	if err != nil {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return err
	}
	ev.Message = fmt.Sprintf("pushed %s to %s", action, target.URL)
	timer.Success(ctx, ev)
	return nil
}

func (d *Dispatcher) buildBody(ctx context.Context, postID int64, post *model.Post, action string) (map[string]interface{}, error) {
	if action == model.SyncActionDelete {
		return map[string]interface{}{
			"action":       model.SyncActionDelete,
			"host_post_id": postID,
			"source_url":   d.cfg.SiteURL,
		}, nil
	}
	categories, err := d.terms.ListNames(ctx, postID, model.TaxonomyCategory)
	if err != nil {
		return nil, err
	}
	tags, err := d.terms.ListNames(ctx, postID, model.TaxonomyTag)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"host_post_id": postID,
		"title":        post.Title,
		"content":      post.Content,
		"excerpt":      post.Excerpt,
		"categories":   categories,
		"tags":         tags,
		"source_url":   d.cfg.SiteURL,
	}
	if url := d.featuredImageURL(ctx, post); url != "" {
		body["featured_image_url"] = url
	}
	return body, nil
}

// featuredImageURL resolves the post's featured asset to a public URL.
// A missing asset row is skipped, the push still carries the text.
func (d *Dispatcher) featuredImageURL(ctx context.Context, post *model.Post) string {
	if post.FeaturedAssetID == 0 || d.store == nil {
		return ""
	}
	asset, err := d.assets.Get(ctx, post.FeaturedAssetID)
	if err != nil {
		logutil.GetLogger(ctx).Warn("featured asset lookup failed",
			zap.Int64("post_id", post.ID),
			zap.Int64("asset_id", post.FeaturedAssetID),
			zap.Error(err),
		)
		return ""
	}
	return d.store.URL(asset.FileKey, d.cfg.SiteURL)
}

func (d *Dispatcher) send(ctx context.Context, target *model.Target, body map[string]interface{}) error {
	sig, err := signature.Sign(body, target.Key)
	if err != nil {
		return fmt.Errorf("sign push body: %w", err)
	}
	body["signature"] = sig
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode push body: %w", err)
	}
	endpoint := target.URL + "/api/v1/sync"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read push reply: %w", err)
	}
	var reply pushReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("target returned status %d with unreadable body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !reply.Success {
		msg := reply.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("target rejected push: %s", msg)
	}
	return nil
}

func auditAction(action string) string {
	switch action {
	case model.SyncActionUpdate:
		return model.AuditActionUpdate
	case model.SyncActionDelete:
		return model.AuditActionDelete
	default:
		return model.AuditActionSync
	}
}
