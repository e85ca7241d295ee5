package grpc

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

type ctxKey string

const principalKey ctxKey = "principal"

// clientBoundMethods require a bearer token plus a proof signed over the
// full method name.
var clientBoundMethods = map[string]bool{
	methodWhoAmI: true,
}

// PrincipalFromContext returns the caller set by the client-bound
// interceptor.
func PrincipalFromContext(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*services.Principal)
	return p, ok
}

func (s *GRPCServer) clientBoundInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !clientBoundMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	bearer, ok := common.BearerToken(first(md, common.AuthorizationHeaderName))
	if !ok {
		s.observe("access", common.ErrorUnauthorized)
		return nil, toStatus(common.ErrorUnauthorized)
	}

	p, err := s.auth.VerifyAccess(ctx, bearer, proofFromMetadata(md), info.FullMethod)
	s.observe("access", err)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, principalKey, p), req)
}

// first returns the first value of the first key present in md.
func first(md metadata.MD, keys ...string) string {
	for _, key := range keys {
		if v := md.Get(key); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return ""
}

func proofFromMetadata(md metadata.MD) services.ClientProof {
	return services.ClientProof{
		PublicKey: first(md, common.HeaderClientPublicKey),
		Signature: first(md, common.HeaderClientSignature),
		Timestamp: first(md, common.HeaderClientTimestamp),
	}
}

// remoteIP prefers the first x-forwarded-for hop when the server sits
// behind a trusted proxy.
func (s *GRPCServer) remoteIP(ctx context.Context) string {
	if s.trustProxy {
		md, _ := metadata.FromIncomingContext(ctx)
		if fwd := first(md, "x-forwarded-for"); fwd != "" {
			ip, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(ip)
		}
	}
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
