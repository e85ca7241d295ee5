package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
)

type ctxKey string

const principalKey ctxKey = "principal"

// PrincipalFromContext returns the caller resolved by the client-bound
// middleware.
func PrincipalFromContext(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*services.Principal)
	return p, ok
}

// clientBound requires a bearer access token and a client proof signed
// over the request path by the device the token was issued to.
func (a *api) clientBound(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, ok := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			a.observe("access", common.ErrorUnauthorized)
			respondError(w, common.ErrorUnauthorized)
			return
		}

		p, err := a.auth.VerifyAccess(r.Context(), bearer, proofFromHeaders(r.Header), r.URL.Path)
		a.observe("access", err)
		if err != nil {
			respondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
	})
}

func (a *api) requireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(common.HeaderAdminKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.adminKey)) != 1 {
			a.logger.Warn(r.Context(), "admin key rejected", "path", r.URL.Path, "ip", clientIP(r, a.trustProxy))
			respondError(w, common.ErrorUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
