package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/handler"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/password"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/signature"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

const testSharedKey = "0123456789abcdef0123456789abcdef"

type testNode struct {
	router http.Handler
	db     *sql.DB
	cfg    *config.Config
}

func newTestNode(t *testing.T, cfg *config.Config) *testNode {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repo.ApplyMigrations(db))
	t.Cleanup(func() { _ = db.Close() })

	postRepo := repo.NewPostRepo(db)
	termRepo := repo.NewTermRepo(db)
	mappingRepo := repo.NewMappingRepo(db)
	targetRepo := repo.NewTargetRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	assetRepo := repo.NewAssetRepo(db)

	auditor := service.NewAuditor(auditRepo, cfg.SiteURL)
	dispatcher := service.NewDispatcher(cfg, postRepo, termRepo, assetRepo, targetRepo, nil, auditor)
	receiver := service.NewReceiver(cfg, postRepo, termRepo, mappingRepo, assetRepo, nil, auditor, nil)
	postService := service.NewPostService(cfg, postRepo, termRepo, dispatcher)
	authService := service.NewAuthService(cfg)

	deps := handler.RouterDeps{
		Sync:      handler.NewSyncHandler(receiver),
		Translate: handler.NewTranslateHandler(cfg, postRepo, nil),
		Auth:      handler.NewAuthHandler(authService),
		Posts:     handler.NewPostHandler(postService),
		Targets:   handler.NewTargetHandler(cfg, targetRepo),
		Terms:     handler.NewTermHandler(termRepo),
		Logs:      handler.NewLogHandler(auditRepo),
		Files:     handler.NewFileHandler(nil),
		JWTSecret: []byte(cfg.JWTSecret),
	}
	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"), deps)
	return &testNode{router: engine, db: db, cfg: cfg}
}

func targetNode(t *testing.T) *testNode {
	return newTestNode(t, &config.Config{
		Role:      config.RoleTarget,
		SiteURL:   "https://target.example.com",
		JWTSecret: "test-jwt-secret",
		Target:    config.TargetConfig{SharedKey: testSharedKey},
	})
}

func hostNode(t *testing.T) *testNode {
	hash, err := password.Hash("s3cret")
	require.NoError(t, err)
	return newTestNode(t, &config.Config{
		Role:        config.RoleHost,
		SiteURL:     "https://host.example.com",
		JWTSecret:   "test-jwt-secret",
		JWTTTLHours: 1,
		Admin:       config.AdminConfig{User: "admin", PasswordHash: hash},
		Host:        config.HostConfig{PushTimeoutSec: 5},
	})
}

func (n *testNode) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	n.router.ServeHTTP(rec, req)
	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func signBody(t *testing.T, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	sig, err := signature.Sign(body, key)
	require.NoError(t, err)
	signed := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		signed[k] = v
	}
	signed["signature"] = sig
	return signed
}

func syncPayload(hostPostID int64) map[string]interface{} {
	return map[string]interface{}{
		"host_post_id": hostPostID,
		"title":        "Hello",
		"content":      "<!-- wp:paragraph --><p>Body.</p><!-- /wp:paragraph -->",
		"excerpt":      "short",
		"categories":   []string{"News"},
		"tags":         []string{},
		"source_url":   "https://host.example.com",
	}
}

func TestSyncEndpoint(t *testing.T) {
	node := targetNode(t)

	rec, out := node.do(t, http.MethodPost, "/api/v1/sync", signBody(t, syncPayload(7), testSharedKey), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])
	firstID := out["target_post_id"].(float64)
	require.Positive(t, firstID)
	require.Equal(t, true, out["created"])

	// Replay lands on the same local post.
	rec, out = node.do(t, http.MethodPost, "/api/v1/sync", signBody(t, syncPayload(7), testSharedKey), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, firstID, out["target_post_id"])
	require.Equal(t, false, out["created"])
}

func TestSyncEndpointRejectsBadSignature(t *testing.T) {
	node := targetNode(t)

	rec, out := node.do(t, http.MethodPost, "/api/v1/sync", signBody(t, syncPayload(7), "the-wrong-shared-key"), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, out["success"])
}

func TestSyncEndpointRejectsNonObjectBody(t *testing.T) {
	node := targetNode(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader([]byte("[1,2,3]")))
	rec := httptest.NewRecorder()
	node.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthTestEndpoint(t *testing.T) {
	node := targetNode(t)

	body := map[string]interface{}{"source_url": "https://host.example.com"}
	rec, out := node.do(t, http.MethodPost, "/api/v1/auth-test", signBody(t, body, testSharedKey), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])

	rec, _ = node.do(t, http.MethodPost, "/api/v1/auth-test", signBody(t, body, "the-wrong-shared-key"), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncOnHostRoleForbidden(t *testing.T) {
	node := hostNode(t)
	rec, _ := node.do(t, http.MethodPost, "/api/v1/sync", signBody(t, syncPayload(7), testSharedKey), "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTranslateEndpointNotConfigured(t *testing.T) {
	node := targetNode(t)
	rec, _ := node.do(t, http.MethodPost, "/api/v1/translate", map[string]interface{}{"post_id": 1}, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func login(t *testing.T, node *testNode) string {
	rec, out := node.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]interface{}{"user": "admin", "password": "s3cret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAdminPostLifecycle(t *testing.T) {
	node := hostNode(t)
	token := login(t, node)

	rec, out := node.do(t, http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"title":      "First",
		"content":    "<!-- wp:paragraph --><p>x</p><!-- /wp:paragraph -->",
		"categories": []string{"News"},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	post := out["post"].(map[string]interface{})
	postID := int64(post["id"].(float64))
	require.Positive(t, postID)

	rec, out = node.do(t, http.MethodGet, "/api/v1/posts", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["posts"], 1)

	rec, _ = node.do(t, http.MethodDelete, "/api/v1/posts/1", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = node.do(t, http.MethodGet, "/api/v1/posts/1", nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilesWithoutStore(t *testing.T) {
	node := targetNode(t)
	rec, _ := node.do(t, http.MethodGet, "/api/v1/files/pic.jpg", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTermsListing(t *testing.T) {
	node := hostNode(t)
	token := login(t, node)

	rec, _ := node.do(t, http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"title":      "Tagged",
		"content":    "<!-- wp:paragraph --><p>x</p><!-- /wp:paragraph -->",
		"categories": []string{"News", "Tech"},
		"tags":       []string{"golang"},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := node.do(t, http.MethodGet, "/api/v1/terms", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["terms"], 2)

	rec, out = node.do(t, http.MethodGet, "/api/v1/terms?taxonomy=post_tag", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	terms := out["terms"].([]interface{})
	require.Len(t, terms, 1)
	require.Equal(t, "golang", terms[0].(map[string]interface{})["name"])

	rec, _ = node.do(t, http.MethodGet, "/api/v1/terms?taxonomy=bogus", nil, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	node := hostNode(t)
	rec, _ := node.do(t, http.MethodGet, "/api/v1/posts", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = node.do(t, http.MethodGet, "/api/v1/posts", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTargetManagement(t *testing.T) {
	node := hostNode(t)
	token := login(t, node)

	rec, out := node.do(t, http.MethodPost, "/api/v1/targets",
		map[string]interface{}{"url": "https://target.example.com/"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	target := out["target"].(map[string]interface{})
	require.Equal(t, "https://target.example.com", target["url"])
	require.Len(t, target["key"], 48)

	// The list never echoes keys back.
	rec, out = node.do(t, http.MethodGet, "/api/v1/targets", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := out["targets"].([]interface{})
	require.Len(t, listed, 1)
	_, hasKey := listed[0].(map[string]interface{})["key"]
	require.False(t, hasKey)

	rec, _ = node.do(t, http.MethodDelete, "/api/v1/targets?url=https://target.example.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTargetManagementRequiresAuth(t *testing.T) {
	node := targetNode(t)
	rec, _ := node.do(t, http.MethodGet, "/api/v1/targets", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogsEndpoint(t *testing.T) {
	node := hostNode(t)
	token := login(t, node)

	rec, out := node.do(t, http.MethodGet, "/api/v1/logs", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, out["logs"])
}
