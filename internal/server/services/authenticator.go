// Package services contains the server-side business logic: the device
// registry, token issuance and the login, refresh and logout flows that tie
// client proofs to them.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/clientproof"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
)

// ClientProof holds the three proof values exactly as the client sent them.
type ClientProof struct {
	PublicKey string
	Signature string
	Timestamp string
}

type LoginRequest struct {
	IdentityHandle string
	Password       string
	Proof          ClientProof
	App            models.AppMetadata
	IP             string
}

type LoginResult struct {
	TokenPair
	IdentityHandle string
	UserID         string
	ClientID       string
	// Enrolled is true when this login created the device record.
	Enrolled bool
}

type RefreshRequest struct {
	RefreshToken string
	Proof        ClientProof
	IP           string
}

type RefreshResult struct {
	TokenPair
	UserID   string
	ClientID string
}

// Principal is the caller behind a verified client-bound access token.
type Principal struct {
	UserID   string
	ClientID string
	Scopes   []string
}

// Authenticator runs the login, refresh and logout flows. Each step either
// passes or returns one rejection from the common taxonomy; later steps
// never run after a failure.
type Authenticator struct {
	repomanager repomanager.RepositoryManager
	registry    *Registry
	tokens      *TokenIssuer
	guard       *clientproof.Guard
	scopes      []string
	logger      logging.Logger
}

// NewAuthenticator wires the flows over m. A nil now uses time.Now.
func NewAuthenticator(m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	registry := NewRegistry(m, now)
	return &Authenticator{
		repomanager: m,
		registry:    registry,
		tokens:      NewTokenIssuer(m, registry, cfg, now),
		guard:       clientproof.NewGuard(cfg.ReplayWindow, now),
		scopes:      cfg.DefaultScopes,
		logger:      l.With("module", "authenticator"),
	}
}

func (a *Authenticator) Registry() *Registry { return a.registry }

func (a *Authenticator) Tokens() *TokenIssuer { return a.tokens }

// Login authenticates a password holder on a device and issues a token pair
// bound to it. The signed subject is the identity handle as sent.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.IdentityHandle == "" || req.Password == "" {
		return nil, a.reject(ctx, "login", "", fmt.Errorf("%w: identity_handle and password are required", common.ErrMalformedInput))
	}

	proof, err := clientproof.Parse(req.Proof.PublicKey, req.Proof.Signature, req.Proof.Timestamp)
	if err != nil {
		return nil, a.reject(ctx, "login", "", err)
	}

	clientID, err := a.guard.Check(proof, req.IdentityHandle)
	if err != nil {
		return nil, a.reject(ctx, "login", proof.ClientID(), err)
	}

	user, err := a.authenticate(ctx, req.IdentityHandle, req.Password)
	if err != nil {
		return nil, a.reject(ctx, "login", clientID, err)
	}

	enrolled, err := a.reconcileDevice(ctx, user, proof, req)
	if err != nil {
		return nil, a.reject(ctx, "login", clientID, err)
	}

	pair, err := a.tokens.Issue(ctx, user.ID, clientID, a.scopes)
	if err != nil {
		return nil, a.reject(ctx, "login", clientID, err)
	}

	a.logger.Info(ctx, "login succeeded", "user_id", user.ID, "client_id", clientID, "enrolled", enrolled)
	return &LoginResult{
		TokenPair:      *pair,
		IdentityHandle: user.IdentityHandle,
		UserID:         user.ID,
		ClientID:       clientID,
		Enrolled:       enrolled,
	}, nil
}

// Refresh mints a new access token from a refresh token without the
// password. The signed subject is the raw refresh token.
func (a *Authenticator) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResult, error) {
	if req.RefreshToken == "" {
		return nil, a.reject(ctx, "refresh", "", fmt.Errorf("%w: refresh_token is required", common.ErrMalformedInput))
	}

	proof, err := clientproof.Parse(req.Proof.PublicKey, req.Proof.Signature, req.Proof.Timestamp)
	if err != nil {
		return nil, a.reject(ctx, "refresh", "", err)
	}

	clientID, err := a.guard.Check(proof, req.RefreshToken)
	if err != nil {
		return nil, a.reject(ctx, "refresh", proof.ClientID(), err)
	}

	pair, stored, err := a.tokens.Refresh(ctx, req.RefreshToken, clientID, req.IP)
	if err != nil {
		return nil, a.reject(ctx, "refresh", clientID, err)
	}

	a.logger.Debug(ctx, "refresh succeeded", "user_id", stored.UserID, "client_id", clientID)
	return &RefreshResult{TokenPair: *pair, UserID: stored.UserID, ClientID: clientID}, nil
}

// Logout deletes the presented refresh token. Only the device the token was
// issued to may delete it.
func (a *Authenticator) Logout(ctx context.Context, req RefreshRequest) error {
	if req.RefreshToken == "" {
		return a.reject(ctx, "logout", "", fmt.Errorf("%w: refresh_token is required", common.ErrMalformedInput))
	}

	proof, err := clientproof.Parse(req.Proof.PublicKey, req.Proof.Signature, req.Proof.Timestamp)
	if err != nil {
		return a.reject(ctx, "logout", "", err)
	}

	clientID, err := a.guard.Check(proof, req.RefreshToken)
	if err != nil {
		return a.reject(ctx, "logout", proof.ClientID(), err)
	}

	stored, err := a.tokens.Revoke(ctx, req.RefreshToken, clientID)
	if err != nil {
		return a.reject(ctx, "logout", clientID, err)
	}

	a.logger.Info(ctx, "logout", "user_id", stored.UserID, "client_id", clientID)
	return nil
}

// VerifyAccess authenticates a request to a client-bound route: the bearer
// token must be valid, the proof must be signed over path by the device the
// token was issued to, and that device must still be active.
func (a *Authenticator) VerifyAccess(ctx context.Context, bearer string, p ClientProof, path string) (*Principal, error) {
	claims, err := a.tokens.ParseAccessToken(bearer)
	if err != nil {
		return nil, a.reject(ctx, "access", "", err)
	}
	if claims.ClientID == "" {
		return nil, a.reject(ctx, "access", "", common.ErrUnboundToken)
	}

	proof, err := clientproof.Parse(p.PublicKey, p.Signature, p.Timestamp)
	if err != nil {
		return nil, a.reject(ctx, "access", claims.ClientID, err)
	}

	clientID, err := a.guard.Check(proof, path)
	if err != nil {
		return nil, a.reject(ctx, "access", claims.ClientID, err)
	}
	if clientID != claims.ClientID {
		return nil, a.reject(ctx, "access", clientID, common.ErrClientMismatch)
	}

	active, err := a.registry.IsActive(ctx, clientID)
	if err != nil {
		return nil, a.reject(ctx, "access", clientID, err)
	}
	if !active {
		return nil, a.reject(ctx, "access", clientID, common.ErrDeviceRevoked)
	}

	return &Principal{UserID: claims.UserID(), ClientID: clientID, Scopes: claims.Scopes()}, nil
}

// authenticate never tells an absent user from a wrong password or an
// inactive account.
func (a *Authenticator) authenticate(ctx context.Context, handle, password string) (*models.User, error) {
	user, err := a.repomanager.Repositories().Users.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			CheckPassword(dummyHash(), password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) reconcileDevice(ctx context.Context, user *models.User, proof clientproof.Proof, req LoginRequest) (bool, error) {
	clientID := proof.ClientID()

	client, err := a.registry.Get(ctx, clientID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if err := ctx.Err(); err != nil {
			return false, err
		}
		stored, created, err := a.registry.Enroll(ctx, clientID, user.ID, proof.PublicKeyHex(), req.App, req.IP)
		if err != nil {
			return false, err
		}
		if created {
			return true, nil
		}
		client = stored
	case err != nil:
		return false, err
	}

	if client.UserID != user.ID {
		return false, common.ErrDeviceConflict
	}
	if !client.IsActive() {
		return false, common.ErrDeviceRevoked
	}
	return false, a.registry.RecordActivity(ctx, clientID, req.IP)
}

func (a *Authenticator) reject(ctx context.Context, op, clientID string, err error) error {
	if common.IsRejection(err) {
		a.logger.Warn(ctx, "authentication rejected", "op", op, "reason", common.Reason(err), "client_id", clientID)
	} else {
		a.logger.Error(ctx, "authentication failed", "op", op, "client_id", clientID, "error", err)
	}
	return err
}
