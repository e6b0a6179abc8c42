package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/jwt"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/password"
)

// AuthService issues admin tokens for the management API. There is one
// admin account, configured with a bcrypt hash; login failures are
// indistinguishable between unknown user and wrong password.
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, user, plain string) (string, error) {
	admin := s.cfg.Admin
	if admin.User == "" || admin.PasswordHash == "" {
		return "", appErr.ErrUnauthorized
	}
	if user != admin.User || password.Compare(admin.PasswordHash, plain) != nil {
		logutil.GetLogger(ctx).Warn("admin login rejected", zap.String("user", user))
		return "", appErr.ErrUnauthorized
	}
	ttl := time.Duration(s.cfg.JWTTTLHours) * time.Hour
	token, err := jwt.GenerateToken(user, "admin", []byte(s.cfg.JWTSecret), ttl)
	if err != nil {
		return "", err
	}
	return token, nil
}
