package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type appView struct {
	Platform   string `json:"platform"`
	AppID      string `json:"app_id"`
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
}

type clientView struct {
	ClientID    string           `json:"client_id"`
	UserID      string           `json:"user_id"`
	PublicKey   string           `json:"public_key"`
	Status      string           `json:"status"`
	App         appView          `json:"app"`
	IPFirstSeen string           `json:"ip_first_seen"`
	IPLastSeen  string           `json:"ip_last_seen"`
	IPHistory   models.IPHistory `json:"ip_history"`
	CreatedAt   time.Time        `json:"created_at"`
	LastSeenAt  time.Time        `json:"last_seen_at"`
}

func toClientView(c *models.Client) clientView {
	return clientView{
		ClientID:  c.ClientID,
		UserID:    c.UserID,
		PublicKey: c.PublicKey,
		Status:    string(c.Status),
		App: appView{
			Platform:   c.App.Platform,
			AppID:      c.App.AppID,
			AppName:    c.App.AppName,
			AppVersion: c.App.AppVersion,
		},
		IPFirstSeen: c.IPFirstSeen,
		IPLastSeen:  c.IPLastSeen,
		IPHistory:   c.IPHistory,
		CreatedAt:   c.CreatedAt,
		LastSeenAt:  c.LastSeenAt,
	}
}

func (a *api) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := a.registry.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		a.logger.Error(r.Context(), "list clients", "error", err)
		respondError(w, err)
		return
	}

	out := make([]clientView, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientView(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"clients": out})
}

func (a *api) handleRevokeClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")

	err := a.registry.Revoke(r.Context(), clientID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
		return
	case err != nil:
		a.logger.Error(r.Context(), "revoke client", "client_id", clientID, "error", err)
		respondError(w, err)
		return
	}

	a.metrics.DevicesRevoked.Inc()
	a.logger.Info(r.Context(), "client revoked", "client_id", clientID)
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "client_id": clientID})
}
