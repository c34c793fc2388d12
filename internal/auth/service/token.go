package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/cache"
	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/pkg/cryptox"
	"github.com/aussiebroadwan/shopfront/pkg/jwtx"
	"github.com/aussiebroadwan/shopfront/pkg/slogx"
)

// TokenService mints access/refresh pairs and keeps the authoritative copy
// of each user's refresh token in the cache. Writing a new refresh token
// replaces the old one, so a user has at most one live session.
type TokenService struct {
	Access     *jwtx.HS256
	Refresh    *jwtx.HS256
	Cache      cache.Cache
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AccessTokenTTL is the access token lifetime, defaulting to 15 minutes.
func (s *TokenService) AccessTokenTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// RefreshTokenTTL is the refresh token and session lifetime, defaulting to 7 days.
func (s *TokenService) RefreshTokenTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Issue signs a fresh pair for userID. Nothing is stored.
func (s *TokenService) Issue(userID string) (domain.TokenPair, error) {
	now := s.now()

	access, err := s.signAccess(userID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Refresh.Sign(jwtx.NewClaims(userID, jwtx.TokenRefresh, s.RefreshTokenTTL(), s.Issuer, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  s.AccessTokenTTL(),
		RefreshExpiresIn: s.RefreshTokenTTL(),
	}, nil
}

// PersistRefresh makes refresh the only token that can rotate userID's
// access token.
func (s *TokenService) PersistRefresh(ctx context.Context, userID, refresh string) error {
	return s.Cache.Set(ctx, cache.RefreshTokenKey(userID), refresh, s.RefreshTokenTTL())
}

// IssueAndPersist is Issue followed by PersistRefresh.
func (s *TokenService) IssueAndPersist(ctx context.Context, userID string) (domain.TokenPair, error) {
	pair, err := s.Issue(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.PersistRefresh(ctx, userID, pair.RefreshToken); err != nil {
		return domain.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return pair, nil
}

// RotateAccess exchanges a refresh token for a new access token. The
// refresh token itself is not rotated. It fails with ErrInvalidToken when
// the token does not verify or is no longer the one held in the cache.
func (s *TokenService) RotateAccess(ctx context.Context, refresh string) (string, error) {
	claims, err := s.Refresh.Verify(refresh)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	stored, err := s.Cache.Get(ctx, cache.RefreshTokenKey(claims.Subject))
	if errors.Is(err, cache.ErrMiss) {
		return "", fmt.Errorf("%w: no active session", ErrInvalidToken)
	}
	if err != nil {
		return "", err
	}
	if !cryptox.EqualTokens(stored, refresh) {
		slogx.FromContext(ctx).Info("superseded refresh token presented", "user_id", claims.Subject)
		return "", fmt.Errorf("%w: superseded", ErrInvalidToken)
	}

	return s.signAccess(claims.Subject, s.now())
}

// Revoke drops userID's session unconditionally.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	return s.Cache.Delete(ctx, cache.RefreshTokenKey(userID))
}

// RevokeMatching drops the session only while refresh is still the current
// token, so replaying an old token cannot end a newer session. It returns
// ErrInvalidToken when refresh does not verify.
func (s *TokenService) RevokeMatching(ctx context.Context, refresh string) error {
	claims, err := s.Refresh.Verify(refresh)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	deleted, err := s.Cache.DeleteIfEquals(ctx, cache.RefreshTokenKey(claims.Subject), refresh)
	if err != nil {
		return err
	}
	if !deleted {
		slogx.FromContext(ctx).Debug("logout with stale refresh token", "user_id", claims.Subject)
	}
	return nil
}

func (s *TokenService) signAccess(userID string, now time.Time) (string, error) {
	tok, err := s.Access.Sign(jwtx.NewClaims(userID, jwtx.TokenAccess, s.AccessTokenTTL(), s.Issuer, now))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tok, nil
}
