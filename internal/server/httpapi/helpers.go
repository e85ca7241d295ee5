package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
)

const maxBodyBytes = 1 << 16

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil {
		return common.ErrMalformedInput
	}
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		return errors.Join(common.ErrMalformedInput, err)
	}
	return nil
}

// refreshTokenFrom reads refresh_token from the JSON body and falls back to
// the query string when the body is empty or omits it.
func refreshTokenFrom(w http.ResponseWriter, r *http.Request) (string, error) {
	var body refreshRequest
	if r.Body != nil && r.Body != http.NoBody {
		if err := decodeJSON(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	if body.RefreshToken != "" {
		return body.RefreshToken, nil
	}
	return r.URL.Query().Get("refresh_token"), nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrMalformedInput):
		return http.StatusBadRequest
	case common.IsRejection(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the stable reason code. Infrastructure failures are
// reported as internal_error without their text.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusFor(err), errorResponse{Error: common.Reason(err)})
}

func proofFromHeaders(h http.Header) services.ClientProof {
	return services.ClientProof{
		PublicKey: h.Get(common.HeaderClientPublicKey),
		Signature: h.Get(common.HeaderClientSignature),
		Timestamp: h.Get(common.HeaderClientTimestamp),
	}
}

func appFromHeaders(h http.Header) models.AppMetadata {
	return models.AppMetadata{
		Platform:   h.Get(common.HeaderPlatform),
		AppID:      headerValue(h, common.HeaderAppID, common.HeaderAppIDAlias),
		AppName:    headerValue(h, common.HeaderAppName, common.HeaderAppNameAlias),
		AppVersion: headerValue(h, common.HeaderAppVersion, common.HeaderAppVersionAlias),
	}
}

// headerValue returns the first non-empty value among keys.
func headerValue(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// clientIP returns the first X-Forwarded-For hop when trustProxy is set,
// otherwise the host part of RemoteAddr.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(ip)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
