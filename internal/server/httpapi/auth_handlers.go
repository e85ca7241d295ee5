package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
)

type loginRequest struct {
	IdentityHandle string `json:"identity_handle"`
	Password       string `json:"password"`
}

type loginResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	TokenType      string `json:"token_type"`
	IdentityHandle string `json:"identity_handle"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

type meResponse struct {
	UserID   string   `json:"user_id"`
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes"`
}

func (a *api) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = common.Reason(err)
	}
	a.metrics.ObserveAuth("http", op, result)
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.observe("login", err)
		respondError(w, err)
		return
	}

	res, err := a.auth.Login(r.Context(), services.LoginRequest{
		IdentityHandle: body.IdentityHandle,
		Password:       body.Password,
		Proof:          proofFromHeaders(r.Header),
		App:            appFromHeaders(r.Header),
		IP:             clientIP(r, a.trustProxy),
	})
	a.observe("login", err)
	if err != nil {
		respondError(w, err)
		return
	}
	if res.Enrolled {
		a.metrics.DevicesEnrolled.Inc()
	}

	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken:    res.AccessToken,
		RefreshToken:   res.RefreshToken,
		TokenType:      common.TokenTypeBearer,
		IdentityHandle: res.IdentityHandle,
	})
}

func (a *api) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := refreshTokenFrom(w, r)
	if err != nil {
		a.observe("refresh", err)
		respondError(w, err)
		return
	}

	res, err := a.auth.Refresh(r.Context(), services.RefreshRequest{
		RefreshToken: token,
		Proof:        proofFromHeaders(r.Header),
		IP:           clientIP(r, a.trustProxy),
	})
	a.observe("refresh", err)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, refreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    common.TokenTypeBearer,
	})
}

func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := refreshTokenFrom(w, r)
	if err != nil {
		a.observe("logout", err)
		respondError(w, err)
		return
	}

	err = a.auth.Logout(r.Context(), services.RefreshRequest{
		RefreshToken: token,
		Proof:        proofFromHeaders(r.Header),
	})
	a.observe("logout", err)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *api) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, common.ErrorUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, meResponse{UserID: p.UserID, ClientID: p.ClientID, Scopes: p.Scopes})
}
