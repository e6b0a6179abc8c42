package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/model"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/signature"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

func hostConfig() *config.Config {
	return &config.Config{
		Role:    config.RoleHost,
		SiteURL: "https://host.example.com",
		Host:    config.HostConfig{PushTimeoutSec: 5},
	}
}

func newDispatcher(t *testing.T, db *sql.DB, cfg *config.Config) *service.Dispatcher {
	t.Helper()
	auditor := service.NewAuditor(repo.NewAuditRepo(db), cfg.SiteURL)
	return service.NewDispatcher(cfg, repo.NewPostRepo(db), repo.NewTermRepo(db),
		repo.NewAssetRepo(db), repo.NewTargetRepo(db), nil, auditor)
}

// fakeTarget verifies inbound signatures the way a real target node
// would and records the decoded bodies.
type fakeTarget struct {
	key    string
	bodies []map[string]interface{}
	reply  func(w http.ResponseWriter)
}

func (f *fakeTarget) handle(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sig, _ := raw["signature"].(string)
	delete(raw, "signature")
	if !signature.Verify(raw, f.key, sig) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "bad signature"})
		return
	}
	f.bodies = append(f.bodies, raw)
	if f.reply != nil {
		f.reply(w)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "target_post_id": 42})
}

func TestPushDeliversSignedBody(t *testing.T) {
	db := openTestDB(t)
	cfg := hostConfig()
	ctx := context.Background()

	target := &fakeTarget{key: testSharedKey}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync", target.handle)
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := repo.NewTargetRepo(db).Add(ctx, server.URL, testSharedKey)
	require.NoError(t, err)

	posts := repo.NewPostRepo(db)
	terms := repo.NewTermRepo(db)
	postID, err := posts.Create(ctx, &model.Post{
		Title:   "Hello",
		Content: "<!-- wp:paragraph --><p>Body.</p><!-- /wp:paragraph -->",
		Status:  model.PostStatusPublish,
	})
	require.NoError(t, err)
	catID, err := terms.FindOrCreate(ctx, "News", model.TaxonomyCategory)
	require.NoError(t, err)
	require.NoError(t, terms.SetPostTerms(ctx, postID, []int64{catID}, model.TaxonomyCategory))

	dispatcher := newDispatcher(t, db, cfg)
	succeeded, failed, err := dispatcher.Push(ctx, postID, model.SyncActionPublish)
	require.NoError(t, err)
	require.Equal(t, 1, succeeded)
	require.Zero(t, failed)

	require.Len(t, target.bodies, 1)
	body := target.bodies[0]
	require.Equal(t, "Hello", body["title"])
	require.Equal(t, "https://host.example.com", body["source_url"])
	require.EqualValues(t, postID, body["host_post_id"])
	require.Equal(t, []interface{}{"News"}, body["categories"])

	logs, err := repo.NewAuditRepo(db).List(ctx, repo.AuditFilter{HostPostID: postID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, model.AuditStatusSuccess, logs[0].Status)
	require.Equal(t, "admin", logs[0].UserRole)
}

func TestPushRecordsRejection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	target := &fakeTarget{key: testSharedKey, reply: func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "boom"})
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync", target.handle)
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := repo.NewTargetRepo(db).Add(ctx, server.URL, testSharedKey)
	require.NoError(t, err)

	postID, err := repo.NewPostRepo(db).Create(ctx, &model.Post{Title: "Hello", Status: model.PostStatusPublish})
	require.NoError(t, err)

	dispatcher := newDispatcher(t, db, hostConfig())
	succeeded, failed, err := dispatcher.Push(ctx, postID, model.SyncActionPublish)
	require.NoError(t, err)
	require.Zero(t, succeeded)
	require.Equal(t, 1, failed)

	logs, err := repo.NewAuditRepo(db).List(ctx, repo.AuditFilter{Status: model.AuditStatusError})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Contains(t, logs[0].Message, "boom")
}

func TestPushDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	target := &fakeTarget{key: testSharedKey}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync", target.handle)
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := repo.NewTargetRepo(db).Add(ctx, server.URL, testSharedKey)
	require.NoError(t, err)

	dispatcher := newDispatcher(t, db, hostConfig())
	succeeded, failed, err := dispatcher.Push(ctx, 99, model.SyncActionDelete)
	require.NoError(t, err)
	require.Equal(t, 1, succeeded)
	require.Zero(t, failed)

	require.Len(t, target.bodies, 1)
	require.Equal(t, model.SyncActionDelete, target.bodies[0]["action"])
	require.EqualValues(t, 99, target.bodies[0]["host_post_id"])
}

func TestPushSkipsDrafts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	postID, err := repo.NewPostRepo(db).Create(ctx, &model.Post{Title: "Draft", Status: model.PostStatusDraft})
	require.NoError(t, err)

	dispatcher := newDispatcher(t, db, hostConfig())
	succeeded, failed, err := dispatcher.Push(ctx, postID, model.SyncActionPublish)
	require.NoError(t, err)
	require.Zero(t, succeeded)
	require.Zero(t, failed)
}

func TestPushRequiresHostRole(t *testing.T) {
	db := openTestDB(t)
	dispatcher := newDispatcher(t, db, targetConfig())
	_, _, err := dispatcher.Push(context.Background(), 1, model.SyncActionPublish)
	require.ErrorIs(t, err, appErr.ErrRoleMismatch)
}
