package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/jwt"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/password"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

func TestLogin(t *testing.T) {
	hash, err := password.Hash("s3cret")
	require.NoError(t, err)

	cfg := &config.Config{
		Role:        config.RoleHost,
		SiteURL:     "https://host.example.com",
		JWTSecret:   "test-jwt-secret",
		JWTTTLHours: 1,
		Admin:       config.AdminConfig{User: "admin", PasswordHash: hash},
	}
	auth := service.NewAuthService(cfg)
	ctx := context.Background()

	token, err := auth.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	claims, err := jwt.ParseToken(token, []byte(cfg.JWTSecret))
	require.NoError(t, err)
	require.Equal(t, "admin", claims.User)
	require.Equal(t, "admin", claims.Role)

	_, err = auth.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, err = auth.Login(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestLoginWithoutAdminConfigured(t *testing.T) {
	auth := service.NewAuthService(&config.Config{Role: config.RoleHost})
	_, err := auth.Login(context.Background(), "admin", "anything")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}
