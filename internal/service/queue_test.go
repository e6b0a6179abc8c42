package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/ai"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

func TestTranslateQueueProcesses(t *testing.T) {
	db := openTestDB(t)
	cfg := translationConfig()
	posts := repo.NewPostRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	client := ai.NewClient(upperOracle{}, ai.ClientConfig{Model: "test"})
	translator := service.NewTranslator(cfg, posts, client, auditor)
	queue := service.NewTranslateQueue(translator, 4)

	ctx, cancel := context.WithCancel(context.Background())
	queue.Start(ctx)

	postID, err := posts.Create(ctx, &model.Post{Title: "Hello", Status: model.PostStatusPublish})
	require.NoError(t, err)
	require.True(t, queue.Enqueue(ctx, postID))

	require.Eventually(t, func() bool {
		post, err := posts.Get(context.Background(), postID)
		return err == nil && post.Title == "HELLO"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	queue.Wait()
}

func TestTranslateQueueDropsWhenFull(t *testing.T) {
	// Worker not started, so the buffer fills up.
	queue := service.NewTranslateQueue(nil, 1)
	ctx := context.Background()
	require.True(t, queue.Enqueue(ctx, 1))
	require.False(t, queue.Enqueue(ctx, 2))
}
