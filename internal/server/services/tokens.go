package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/auth"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
)

// refreshTokenBytes is the entropy of a raw refresh token before hex encoding.
const refreshTokenBytes = 32

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. RefreshToken is empty when a refresh did not rotate.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// HashRefreshToken is the only form in which a refresh token is stored.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TokenIssuer mints access tokens and manages the stored refresh tokens.
type TokenIssuer struct {
	repomanager repomanager.RepositoryManager
	registry    *Registry
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	rotate      bool
	now         func() time.Time
}

func NewTokenIssuer(m repomanager.RepositoryManager, registry *Registry, cfg *config.Config, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		repomanager: m,
		registry:    registry,
		secret:      []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenValidityDuration,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		rotate:      cfg.RotateRefreshTokens,
		now:         now,
	}
}

// Issue creates a token pair bound to (userID, clientID).
func (s *TokenIssuer) Issue(ctx context.Context, userID, clientID string, scopes []string) (*TokenPair, error) {
	access, err := s.accessToken(userID, clientID, scopes)
	if err != nil {
		return nil, err
	}

	raw, record, err := s.newRefreshToken(userID, clientID, scopes)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Repositories().RefreshTokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

// Refresh validates raw for clientID, records the device's activity from ip
// and mints a new access token carrying the stored scopes. With rotation
// enabled the presented token is consumed and a replacement is returned in
// the same transaction as the activity record; a token consumed concurrently
// is rejected.
func (s *TokenIssuer) Refresh(ctx context.Context, raw, clientID, ip string) (*TokenPair, *models.RefreshToken, error) {
	stored, err := s.lookup(ctx, raw, clientID)
	if err != nil {
		return nil, nil, err
	}

	active, err := s.registry.IsActive(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	if !active {
		return nil, nil, common.ErrDeviceRevoked
	}

	access, err := s.accessToken(stored.UserID, stored.ClientID, stored.Scopes)
	if err != nil {
		return nil, nil, err
	}
	pair := &TokenPair{AccessToken: access}

	if !s.rotate {
		if err := s.registry.RecordActivity(ctx, clientID, ip); err != nil {
			return nil, nil, err
		}
		return pair, stored, nil
	}

	next, record, err := s.newRefreshToken(stored.UserID, stored.ClientID, stored.Scopes)
	if err != nil {
		return nil, nil, err
	}
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := repos.Clients.RecordActivity(ctx, clientID, s.registry.sighting(ip)); err != nil {
			return err
		}
		deleted, err := repos.RefreshTokens.Delete(ctx, stored.TokenHash)
		if err != nil {
			return err
		}
		if !deleted {
			return common.ErrInvalidRefreshToken
		}
		return repos.RefreshTokens.Create(ctx, record)
	})
	if err != nil {
		return nil, nil, err
	}

	pair.RefreshToken = next
	return pair, stored, nil
}

// Revoke deletes raw when it belongs to clientID.
func (s *TokenIssuer) Revoke(ctx context.Context, raw, clientID string) (*models.RefreshToken, error) {
	stored, err := s.find(ctx, raw)
	if err != nil {
		return nil, err
	}
	if stored.ClientID != clientID {
		return nil, common.ErrClientMismatch
	}
	if _, err := s.repomanager.Repositories().RefreshTokens.Delete(ctx, stored.TokenHash); err != nil {
		return nil, err
	}
	return stored, nil
}

// RevokeAllForUser ends every session of the user on every device.
func (s *TokenIssuer) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.repomanager.Repositories().RefreshTokens.DeleteAllForUser(ctx, userID)
}

// ParseAccessToken checks signature and expiry only.
func (s *TokenIssuer) ParseAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.secret, s.now())
}

func (s *TokenIssuer) lookup(ctx context.Context, raw, clientID string) (*models.RefreshToken, error) {
	stored, err := s.find(ctx, raw)
	if err != nil {
		return nil, err
	}
	if stored.Expired(s.now()) {
		return nil, common.ErrInvalidRefreshToken
	}
	if stored.ClientID != clientID {
		return nil, common.ErrClientMismatch
	}
	return stored, nil
}

func (s *TokenIssuer) find(ctx context.Context, raw string) (*models.RefreshToken, error) {
	if raw == "" {
		return nil, common.ErrInvalidRefreshToken
	}
	stored, err := s.repomanager.Repositories().RefreshTokens.Find(ctx, HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return stored, nil
}

func (s *TokenIssuer) accessToken(userID, clientID string, scopes []string) (string, error) {
	token, err := auth.GenerateToken(userID, clientID, scopes, s.secret, s.accessTTL, s.now())
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

func (s *TokenIssuer) newRefreshToken(userID, clientID string, scopes []string) (string, *models.RefreshToken, error) {
	raw, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}
	now := s.now().UTC()
	return raw, &models.RefreshToken{
		TokenHash: HashRefreshToken(raw),
		UserID:    userID,
		ClientID:  clientID,
		Scopes:    scopes,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}, nil
}
