package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/ai"
	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

// upperOracle translates by uppercasing each segment, which makes the
// rewrite visible while preserving segment boundaries.
type upperOracle struct{}

func (upperOracle) Name() string { return "upper" }

func (upperOracle) Chat(ctx context.Context, model string, temperature float64, messages []ai.Message) (string, error) {
	content := messages[len(messages)-1].Content
	payload := content[strings.Index(content, "\n\n")+2:]
	segments := strings.Split(payload, ai.Delimiter)
	for i, segment := range segments {
		segments[i] = strings.ToUpper(segment)
	}
	return strings.Join(segments, ai.Delimiter), nil
}

type brokenOracle struct{}

func (brokenOracle) Name() string { return "broken" }

func (brokenOracle) Chat(ctx context.Context, model string, temperature float64, messages []ai.Message) (string, error) {
	return "", errors.New("oracle down")
}

func translationConfig() *config.Config {
	cfg := targetConfig()
	cfg.Target.Language = "fr"
	cfg.Target.Oracle = config.OracleConfig{Provider: "openai", Model: "gpt-4o-mini"}
	return cfg
}

func TestTranslatePostRewritesAllowedBlocks(t *testing.T) {
	db := openTestDB(t)
	cfg := translationConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	client := ai.NewClient(upperOracle{}, ai.ClientConfig{Model: "test"})
	translator := service.NewTranslator(cfg, posts, client, auditor)
	ctx := context.Background()

	content := `<!-- wp:paragraph --><p>Hello world.</p><!-- /wp:paragraph -->` + "\n" +
		`<!-- wp:code --><pre>keep me as is</pre><!-- /wp:code -->` + "\n" +
		`<!-- wp:list --><ul><li>first item</li><li>second item</li></ul><!-- /wp:list -->`
	postID, err := posts.Create(ctx, &model.Post{
		Title:   "Greetings",
		Content: content,
		Excerpt: "A short note",
		Status:  model.PostStatusPublish,
	})
	require.NoError(t, err)

	require.NoError(t, translator.TranslatePost(ctx, postID))

	post, err := posts.Get(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "GREETINGS", post.Title)
	require.Equal(t, "A SHORT NOTE", post.Excerpt)
	require.Contains(t, post.Content, "<p>HELLO WORLD.</p>")
	require.Contains(t, post.Content, "<pre>keep me as is</pre>")
	require.Contains(t, post.Content, "<li>FIRST ITEM</li><li>SECOND ITEM</li>")
	// Block comments survive the rewrite.
	require.Contains(t, post.Content, "<!-- wp:paragraph -->")
	require.Contains(t, post.Content, "<!-- /wp:list -->")

	logs, err := repo.NewAuditRepo(db).List(ctx, repo.AuditFilter{Status: model.AuditStatusSuccess})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, model.AuditActionTranslate, logs[0].Action)
	require.Equal(t, "system", logs[0].UserRole)
}

func TestTranslatePostListItemsTranslatedIndependently(t *testing.T) {
	db := openTestDB(t)
	cfg := translationConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	client := ai.NewClient(upperOracle{}, ai.ClientConfig{Model: "test"})
	translator := service.NewTranslator(cfg, posts, client, auditor)
	ctx := context.Background()

	// One item's text is a prefix of its sibling's.
	content := `<!-- wp:list --><ul><li>go</li><li>go faster</li></ul><!-- /wp:list -->`
	postID, err := posts.Create(ctx, &model.Post{
		Title:   "Lists",
		Content: content,
		Status:  model.PostStatusPublish,
	})
	require.NoError(t, err)

	require.NoError(t, translator.TranslatePost(ctx, postID))

	post, err := posts.Get(ctx, postID)
	require.NoError(t, err)
	require.Contains(t, post.Content, "<li>GO</li><li>GO FASTER</li>")
}

func TestTranslatePostKeepsContainersIntact(t *testing.T) {
	db := openTestDB(t)
	cfg := translationConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	client := ai.NewClient(upperOracle{}, ai.ClientConfig{Model: "test"})
	translator := service.NewTranslator(cfg, posts, client, auditor)
	ctx := context.Background()

	content := `<!-- wp:columns --><div class="wp-block-columns">` +
		`<!-- wp:column --><div class="wp-block-column">` +
		`<!-- wp:paragraph --><p>Inner text.</p><!-- /wp:paragraph -->` +
		`</div><!-- /wp:column --></div><!-- /wp:columns -->`
	postID, err := posts.Create(ctx, &model.Post{Title: "T", Content: content, Status: model.PostStatusPublish})
	require.NoError(t, err)

	require.NoError(t, translator.TranslatePost(ctx, postID))

	post, err := posts.Get(ctx, postID)
	require.NoError(t, err)
	require.Contains(t, post.Content, `<div class="wp-block-columns">`)
	require.Contains(t, post.Content, `<div class="wp-block-column">`)
	require.Contains(t, post.Content, "<p>INNER TEXT.</p>")
}

func TestTranslatePostOracleFailureKeepsText(t *testing.T) {
	db := openTestDB(t)
	cfg := translationConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	client := ai.NewClient(brokenOracle{}, ai.ClientConfig{Model: "test"})
	translator := service.NewTranslator(cfg, posts, client, auditor)
	ctx := context.Background()

	content := `<!-- wp:paragraph --><p>Hello world.</p><!-- /wp:paragraph -->`
	postID, err := posts.Create(ctx, &model.Post{Title: "Greetings", Content: content, Status: model.PostStatusPublish})
	require.NoError(t, err)

	require.NoError(t, translator.TranslatePost(ctx, postID))

	post, err := posts.Get(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "Greetings", post.Title)
	require.Equal(t, content, post.Content)

	logs, err := repo.NewAuditRepo(db).List(ctx, repo.AuditFilter{Status: model.AuditStatusError})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, model.AuditActionTranslate, logs[0].Action)
}

func TestTranslatePostUnconfigured(t *testing.T) {
	db := openTestDB(t)
	cfg := targetConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	translator := service.NewTranslator(cfg, posts, nil, auditor)

	err := translator.TranslatePost(context.Background(), 1)
	require.Error(t, err)
}
