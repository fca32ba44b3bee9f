package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/kilter-intake/internal/models"
	appErrors "github.com/noah-isme/kilter-intake/pkg/errors"
)

const adminTokenIssuer = "kilter-intake"

// AdminSessionStore persists issued admin sessions so tokens can be revoked.
type AdminSessionStore interface {
	Save(ctx context.Context, session *models.AdminSession) error
	Exists(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// AdminAuthConfig configures the admin gate.
type AdminAuthConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
}

// AdminAuthService guards the admin view behind a single shared password.
type AdminAuthService struct {
	sessions AdminSessionStore
	metrics  *MetricsService
	logger   *zap.Logger
	config   AdminAuthConfig
	now      func() time.Time
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(sessions AdminSessionStore, metrics *MetricsService, logger *zap.Logger, cfg AdminAuthConfig) *AdminAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	return &AdminAuthService{sessions: sessions, metrics: metrics, logger: logger, config: cfg, now: time.Now}
}

// Login compares password verbatim with the configured secret and issues a session token.
func (s *AdminAuthService) Login(ctx context.Context, password string, meta models.RequestMeta) (*models.AdminLoginResult, error) {
	if s.config.Password == "" {
		s.metrics.RecordAdminLogin("unconfigured")
		s.logger.Warn("admin login attempted without a configured password")
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "")
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) != 1 {
		s.metrics.RecordAdminLogin("rejected")
		s.logger.Warn("admin login rejected", zap.String("ip", meta.IPAddress))
		return nil, appErrors.Clone(appErrors.ErrInvalidPassword, "")
	}

	issuedAt := s.now().UTC()
	session := &models.AdminSession{
		ID:        uuid.NewString(),
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.SessionTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	token, err := s.sign(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin token")
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist admin session")
	}

	s.metrics.RecordAdminLogin("success")
	s.logger.Info("admin login", zap.String("session_id", session.ID), zap.String("ip", meta.IPAddress))
	return &models.AdminLoginResult{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Logout revokes the session behind claims.
func (s *AdminAuthService) Logout(ctx context.Context, claims *models.AdminClaims) error {
	if claims == nil || claims.SessionID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing admin session")
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke admin session")
	}
	s.logger.Info("admin logout", zap.String("session_id", claims.SessionID))
	return nil
}

// ValidateToken checks signature, expiry and that the session has not been revoked.
func (s *AdminAuthService) ValidateToken(ctx context.Context, tokenString string) (*models.AdminClaims, error) {
	if s.config.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret(), nil
	}, jwt.WithIssuer(adminTokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	live, err := s.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin session")
	}
	if !live {
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "admin session expired or revoked")
	}
	return claims, nil
}

func (s *AdminAuthService) sign(session *models.AdminSession) (string, error) {
	claims := models.AdminClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminTokenIssuer,
			Subject:   "admin",
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret())
}

// secret binds tokens to the admin password so rotating it invalidates every session.
func (s *AdminAuthService) secret() []byte {
	return []byte(s.config.SessionSecret + "|" + s.config.Password)
}
