package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/filestore"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/signature"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/urlutil"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

const maxImageBytes = 10 << 20

// Receiver handles signed pushes arriving at a target node: verify,
// map, upsert, then hand the post to the translate queue.
type Receiver struct {
	cfg      *config.Config
	posts    *repo.PostRepo
	terms    *repo.TermRepo
	mappings *repo.MappingRepo
	assets   *repo.AssetRepo
	store    filestore.Store
	auditor  *Auditor
	queue    *TranslateQueue
	client   *http.Client
}

func NewReceiver(cfg *config.Config, posts *repo.PostRepo, terms *repo.TermRepo,
	mappings *repo.MappingRepo, assets *repo.AssetRepo, store filestore.Store,
	auditor *Auditor, queue *TranslateQueue) *Receiver {
	return &Receiver{
		cfg:      cfg,
		posts:    posts,
		terms:    terms,
		mappings: mappings,
		assets:   assets,
		store:    store,
		auditor:  auditor,
		queue:    queue,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type SyncResult struct {
	TargetPostID int64
	Created      bool
	Queued       bool
}

// HandleSync processes one inbound push. raw is the decoded request
// body; the signature is stripped from it and the remainder is
// re-canonicalized for verification, so the bytes signed by the host
// and the bytes verified here come from the same map shape.
func (r *Receiver) HandleSync(ctx context.Context, raw map[string]interface{}) (*SyncResult, error) {
	timer := r.auditor.Start("anonymous")
	req, err := r.authenticate(raw)
	if err != nil {
		timer.Error(ctx, AuditEvent{
			Action:        model.AuditActionSync,
			HostPostID:    rawHostPostID(raw),
			SourceSiteURL: rawSourceURL(raw),
			TargetSiteURL: r.cfg.SiteURL,
			Message:       err.Error(),
		})
		return nil, err
	}
	ev := AuditEvent{
		Action:        model.AuditActionSync,
		HostPostID:    req.HostPostID,
		SourceSiteURL: req.SourceURL,
		TargetSiteURL: r.cfg.SiteURL,
	}
	if req.Action == model.SyncActionDelete {
		ev.Action = model.AuditActionDelete
		return r.handleDelete(ctx, timer, ev, req)
	}
	if req.HostPostID == 0 || strings.TrimSpace(req.Title) == "" {
		ev.Message = "missing host_post_id or title"
		timer.Error(ctx, ev)
		return nil, fmt.Errorf("missing host_post_id or title: %w", appErr.ErrInvalid)
	}

	result, err := r.upsert(ctx, req)
	if err != nil {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return nil, err
	}
	ev.TargetPostID = &result.TargetPostID
	if result.Created {
		ev.Message = "post created"
	} else {
		ev.Message = "post updated"
	}
	timer.Success(ctx, ev)

	if r.queue != nil && r.cfg.TranslationConfigured() {
		result.Queued = r.queue.Enqueue(ctx, result.TargetPostID)
	}
	return result, nil
}

// VerifyAuth runs only the authentication steps, backing the handshake
// endpoint hosts call when a target is first registered.
func (r *Receiver) VerifyAuth(ctx context.Context, raw map[string]interface{}) error {
	_, err := r.authenticate(raw)
	return err
}

func (r *Receiver) authenticate(raw map[string]interface{}) (*model.SyncRequest, error) {
	if r.cfg.Role != config.RoleTarget {
		return nil, appErr.ErrRoleMismatch
	}
	key := r.cfg.Target.SharedKey
	if key == "" {
		return nil, appErr.ErrNoSharedKey
	}
	sig, _ := raw["signature"].(string)
	if sig == "" {
		return nil, appErr.ErrInvalidSignature
	}
	body := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == "signature" {
			continue
		}
		body[k] = v
	}
	if !signature.Verify(body, key, sig) {
		return nil, appErr.ErrInvalidSignature
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("re-encode sync body: %w", err)
	}
	req := &model.SyncRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("malformed sync body: %w", appErr.ErrInvalid)
	}
	req.SourceURL = urlutil.Canonicalize(req.SourceURL)
	return req, nil
}

func (r *Receiver) handleDelete(ctx context.Context, timer *AuditTimer, ev AuditEvent, req *model.SyncRequest) (*SyncResult, error) {
	targetPostID, err := r.mappings.Resolve(ctx, req.HostPostID, req.SourceURL)
	if appErr.IsNotFound(err) {
		ev.Message = "no mapped post, nothing to delete"
		timer.Success(ctx, ev)
		return &SyncResult{}, nil
	}
	if err != nil {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return nil, err
	}
	if err := r.posts.Delete(ctx, targetPostID); err != nil && !appErr.IsNotFound(err) {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return nil, err
	}
	if err := r.mappings.Delete(ctx, targetPostID); err != nil {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return nil, err
	}
	ev.TargetPostID = &targetPostID
	ev.Message = "post deleted"
	timer.Success(ctx, ev)
	return &SyncResult{TargetPostID: targetPostID}, nil
}

func (r *Receiver) upsert(ctx context.Context, req *model.SyncRequest) (*SyncResult, error) {
	targetPostID, err := r.mappings.Resolve(ctx, req.HostPostID, req.SourceURL)
	created := false
	switch {
	case err == nil:
		post, getErr := r.posts.Get(ctx, targetPostID)
		if appErr.IsNotFound(getErr) {
			// Mapped post was deleted locally; recreate and remap.
			targetPostID, err = r.createPost(ctx, req)
			if err != nil {
				return nil, err
			}
			created = true
		} else if getErr != nil {
			return nil, getErr
		} else {
			post.Title = req.Title
			post.Content = req.Content
			post.Excerpt = req.Excerpt
			post.Status = model.PostStatusPublish
			if err := r.posts.Update(ctx, post); err != nil {
				return nil, err
			}
		}
	case appErr.IsNotFound(err):
		targetPostID, err = r.createPost(ctx, req)
		if err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, err
	}

	r.syncTerms(ctx, targetPostID, req.Categories, model.TaxonomyCategory)
	r.syncTerms(ctx, targetPostID, req.Tags, model.TaxonomyTag)
	if req.FeaturedImageURL != "" {
		r.syncFeaturedImage(ctx, targetPostID, req.FeaturedImageURL)
	}
	if err := r.mappings.Set(ctx, targetPostID, req.HostPostID, req.SourceURL); err != nil {
		return nil, err
	}
	return &SyncResult{TargetPostID: targetPostID, Created: created}, nil
}

func (r *Receiver) createPost(ctx context.Context, req *model.SyncRequest) (int64, error) {
	post := &model.Post{
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Status:  model.PostStatusPublish,
	}
	return r.posts.Create(ctx, post)
}

// syncTerms replaces the post's terms with the pushed names. Term
// enrichment is best effort, a failed name is skipped rather than
// failing the sync.
func (r *Receiver) syncTerms(ctx context.Context, postID int64, names []string, taxonomy string) {
	termIDs := make([]int64, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := r.terms.FindOrCreate(ctx, name, taxonomy)
		if err != nil {
			logutil.GetLogger(ctx).Warn("term sync failed",
				zap.String("taxonomy", taxonomy),
				zap.String("name", name),
				zap.Error(err),
			)
			continue
		}
		termIDs = append(termIDs, id)
	}
	if err := r.terms.SetPostTerms(ctx, postID, termIDs, taxonomy); err != nil {
		logutil.GetLogger(ctx).Warn("set post terms failed",
			zap.Int64("post_id", postID),
			zap.String("taxonomy", taxonomy),
			zap.Error(err),
		)
	}
}

// syncFeaturedImage downloads the host's featured image into the local
// file store. Any failure is logged and swallowed, the text sync has
// already succeeded.
func (r *Receiver) syncFeaturedImage(ctx context.Context, postID int64, imageURL string) {
	if r.store == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.Int64("post_id", postID), zap.String("image_url", imageURL))
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		logger.Warn("featured image url rejected")
		return
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		logger.Warn("featured image request build failed", zap.Error(err))
		return
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		logger.Warn("featured image download failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("featured image download failed", zap.Int("status", resp.StatusCode))
		return
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		logger.Warn("featured image read failed", zap.Error(err))
		return
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	key := fmt.Sprintf("featured-%d-%s", postID, name)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := r.store.Save(ctx, key, data, contentType); err != nil {
		logger.Warn("featured image store failed", zap.Error(err))
		return
	}
	asset := &model.Asset{PostID: postID, FileKey: key, Mime: contentType}
	assetID, err := r.assets.Create(ctx, asset)
	if err != nil {
		logger.Warn("featured asset record failed", zap.Error(err))
		return
	}
	if err := r.posts.SetFeaturedAsset(ctx, postID, assetID); err != nil {
		logger.Warn("featured asset attach failed", zap.Error(err))
	}
}

func rawHostPostID(raw map[string]interface{}) int64 {
	if v, ok := raw["host_post_id"].(float64); ok {
		return int64(v)
	}
	return 0
}

func rawSourceURL(raw map[string]interface{}) string {
	v, _ := raw["source_url"].(string)
	return urlutil.Canonicalize(v)
}
