package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/grameenmart/storefront/pkg/auth"
	"github.com/grameenmart/storefront/pkg/auth/session"
	"github.com/grameenmart/storefront/pkg/config"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/security"
)

const invalidCredentialsMessage = "Invalid credentials!"

// Service defines the behavior needed by the admin auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	admin   config.AdminConfig
	jwtCfg  config.JWTConfig
	session sessionManager
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Admin          config.AdminConfig
	JWTConfig      config.JWTConfig
	SessionManager sessionManager
	Now            func() time.Time
}

// NewService constructs the admin login service. A single admin account is
// configured through the environment.
func NewService(params ServiceParams) (Service, error) {
	if !params.Admin.Enabled() {
		return nil, fmt.Errorf("admin username and password hash are required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		admin:   params.Admin,
		jwtCfg:  params.JWTConfig,
		session: params.SessionManager,
		now:     now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(strings.TrimSpace(s.admin.Username))) == 1

	ok, err := security.VerifyPassword(req.Password, s.admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !sameUser || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessID := session.NewAccessID()
	token, claims, err := pkgAuth.MintAdminToken(s.jwtCfg, s.now().UTC(), pkgAuth.AdminTokenPayload{
		Username: username,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}
	if err := s.session.Open(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open admin session")
	}

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		Username:    username,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke admin session")
	}
	return nil
}
