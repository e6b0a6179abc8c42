package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

// PostService owns the local content lifecycle. On a host node every
// publish/update/delete also fans out to targets in the background; the
// local write never waits on, or fails because of, a push.
type PostService struct {
	cfg        *config.Config
	posts      *repo.PostRepo
	terms      *repo.TermRepo
	dispatcher *Dispatcher
}

func NewPostService(cfg *config.Config, posts *repo.PostRepo, terms *repo.TermRepo, dispatcher *Dispatcher) *PostService {
	return &PostService{cfg: cfg, posts: posts, terms: terms, dispatcher: dispatcher}
}

type PostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

type PostDetail struct {
	model.Post
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

func (s *PostService) Create(ctx context.Context, input PostInput) (*model.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErr.ErrInvalid
	}
	status := input.Status
	if status == "" {
		status = model.PostStatusPublish
	}
	if status != model.PostStatusPublish && status != model.PostStatusDraft {
		return nil, appErr.ErrInvalid
	}
	post := &model.Post{
		Title:   input.Title,
		Content: input.Content,
		Excerpt: input.Excerpt,
		Status:  status,
	}
	id, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	s.setTerms(ctx, id, input)
	s.pushAsync(id, model.SyncActionPublish)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id int64, input PostInput) (*model.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErr.ErrInvalid
	}
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Title = input.Title
	post.Content = input.Content
	post.Excerpt = input.Excerpt
	if input.Status != "" {
		if input.Status != model.PostStatusPublish && input.Status != model.PostStatusDraft {
			return nil, appErr.ErrInvalid
		}
		post.Status = input.Status
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.setTerms(ctx, id, input)
	s.pushAsync(id, model.SyncActionUpdate)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.pushAsync(id, model.SyncActionDelete)
	return nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*PostDetail, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &PostDetail{Post: *post}
	detail.Categories, _ = s.terms.ListNames(ctx, id, model.TaxonomyCategory)
	detail.Tags, _ = s.terms.ListNames(ctx, id, model.TaxonomyTag)
	return detail, nil
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

// Push re-sends the post to every target on demand.
func (s *PostService) Push(ctx context.Context, id int64) (succeeded, failed int, err error) {
	if s.dispatcher == nil {
		return 0, 0, appErr.ErrRoleMismatch
	}
	return s.dispatcher.Push(ctx, id, model.SyncActionUpdate)
}

func (s *PostService) setTerms(ctx context.Context, postID int64, input PostInput) {
	s.applyTerms(ctx, postID, input.Categories, model.TaxonomyCategory)
	s.applyTerms(ctx, postID, input.Tags, model.TaxonomyTag)
}

func (s *PostService) applyTerms(ctx context.Context, postID int64, names []string, taxonomy string) {
	if names == nil {
		return
	}
	termIDs := make([]int64, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := s.terms.FindOrCreate(ctx, name, taxonomy)
		if err != nil {
			logutil.GetLogger(ctx).Warn("term assign failed",
				zap.String("taxonomy", taxonomy),
				zap.String("name", name),
				zap.Error(err),
			)
			continue
		}
		termIDs = append(termIDs, id)
	}
	if err := s.terms.SetPostTerms(ctx, postID, termIDs, taxonomy); err != nil {
		logutil.GetLogger(ctx).Warn("set post terms failed",
			zap.Int64("post_id", postID),
			zap.String("taxonomy", taxonomy),
			zap.Error(err),
		)
	}
}

func (s *PostService) pushAsync(id int64, action string) {
	if s.dispatcher == nil || s.cfg.Role != config.RoleHost {
		return
	}
	go func() {
		if _, _, err := s.dispatcher.Push(context.Background(), id, action); err != nil {
			logutil.GetLogger(context.Background()).Error("background push failed",
				zap.Int64("post_id", id),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}()
}
