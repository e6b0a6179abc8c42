package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/ai"
	"github.com/hemantwpdev/post-sync-translate/internal/blocks"
	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

// translatableBlocks are the block types whose inner text is rewritten.
// Everything else passes through byte for byte, except lists which are
// translated item by item.
var translatableBlocks = map[string]bool{
	"core/paragraph": true,
	"core/heading":   true,
	"core/quote":     true,
	"core/button":    true,
}

const listBlock = "core/list"

// Translator rewrites a stored post into the configured language. Units
// that fail translation keep their original text; the run is then
// recorded as an error without undoing units that did succeed.
type Translator struct {
	cfg     *config.Config
	posts   *repo.PostRepo
	client  *ai.Client
	auditor *Auditor
}

func NewTranslator(cfg *config.Config, posts *repo.PostRepo, client *ai.Client, auditor *Auditor) *Translator {
	return &Translator{cfg: cfg, posts: posts, client: client, auditor: auditor}
}

func (t *Translator) TranslatePost(ctx context.Context, postID int64) error {
	timer := t.auditor.Start("system")
	ev := AuditEvent{
		Action:     model.AuditActionTranslate,
		HostPostID: postID,
	}
	language, ok := config.SupportedLanguages[t.cfg.Target.Language]
	if !ok || t.client == nil {
		ev.Message = "translation not configured"
		timer.Error(ctx, ev)
		return appErr.ErrOracleUnavailable
	}
	post, err := t.posts.Get(ctx, postID)
	if err != nil {
		ev.Message = err.Error()
		timer.Error(ctx, ev)
		return err
	}

	changed := false
	failed := 0
	translated := 0

	if title, ok := t.translateUnit(ctx, post.Title, language, &failed, &translated); ok {
		post.Title = title
		changed = true
	}
	if content, contentChanged := t.translateContent(ctx, post.Content, language, &failed, &translated); contentChanged {
		post.Content = content
		changed = true
	}
	if excerpt, ok := t.translateUnit(ctx, post.Excerpt, language, &failed, &translated); ok {
		post.Excerpt = excerpt
		changed = true
	}

	if changed {
		if err := t.posts.Update(ctx, post); err != nil {
			ev.Message = err.Error()
			timer.Error(ctx, ev)
			return err
		}
	}

	logutil.GetLogger(ctx).Info("post translation finished",
		zap.Int64("post_id", postID),
		zap.String("language", language),
		zap.Int("units_translated", translated),
		zap.Int("units_failed", failed),
	)
	if failed > 0 {
		ev.Message = "some units kept original text"
		timer.Error(ctx, ev)
		return nil
	}
	ev.Message = "translated into " + language
	timer.Success(ctx, ev)
	return nil
}

// translateUnit handles a plain-text unit (title, excerpt). It returns
// the new text and whether the caller should store it.
func (t *Translator) translateUnit(ctx context.Context, text, language string, failed, translated *int) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	result, err := t.client.TranslateText(ctx, blocks.ExtractText(text), language)
	if err != nil {
		*failed++
		return "", false
	}
	*translated++
	if result == "" || result == text {
		return "", false
	}
	return result, true
}

func (t *Translator) translateContent(ctx context.Context, content, language string, failed, translated *int) (string, bool) {
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	tree := blocks.Parse(content)
	if len(tree) == 0 {
		return "", false
	}
	t.translateBlocks(ctx, tree, language, failed, translated)
	serialized := blocks.Serialize(tree)
	if serialized == content {
		return "", false
	}
	return serialized, true
}

func (t *Translator) translateBlocks(ctx context.Context, tree []*blocks.Block, language string, failed, translated *int) {
	for _, blk := range tree {
		if len(blk.InnerBlocks) > 0 {
			// Containers keep their own markup; only children are visited.
			t.translateBlocks(ctx, blk.InnerBlocks, language, failed, translated)
			continue
		}
		switch {
		case blk.Name == listBlock && blk.InnerHTML != "":
			t.translateList(ctx, blk, language, failed, translated)
		case translatableBlocks[blk.Name] && blk.InnerHTML != "":
			plain := blocks.ExtractText(blk.InnerHTML)
			if plain == "" {
				continue
			}
			result, err := t.client.TranslateText(ctx, plain, language)
			if err != nil {
				*failed++
				continue
			}
			*translated++
			if result != "" && result != plain {
				blk.SetInnerHTML(blocks.ReplaceText(blk.InnerHTML, result))
			}
		}
	}
}

// translateList rewrites each <li> separately so list structure
// survives regardless of what the oracle returns.
func (t *Translator) translateList(ctx context.Context, blk *blocks.Block, language string, failed, translated *int) {
	markup := blk.InnerHTML
	for i, item := range blocks.ListItems(blk.InnerHTML) {
		plain := blocks.ExtractText(item)
		if plain == "" {
			continue
		}
		result, err := t.client.TranslateText(ctx, plain, language)
		if err != nil {
			*failed++
			continue
		}
		*translated++
		if result != "" && result != plain {
			markup = blocks.ReplaceListItem(markup, i, result)
		}
	}
	if markup != blk.InnerHTML {
		blk.SetInnerHTML(markup)
	}
}
