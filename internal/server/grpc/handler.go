package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authService implements AuthServiceServer on top of GRPCServer.
type authService struct {
	s *GRPCServer
}

// toStatus maps the error taxonomy onto gRPC codes. The message is the
// stable reason code; store failures never leak their text.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrMalformedInput):
		return status.Error(codes.InvalidArgument, common.ReasonMalformedInput)
	case common.IsRejection(err):
		return status.Error(codes.Unauthenticated, common.Reason(err))
	default:
		return status.Error(codes.Internal, common.ReasonInternal)
	}
}

func (s *GRPCServer) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = common.Reason(err)
	}
	s.metrics.ObserveAuth("grpc", op, result)
}

func (a *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	res, err := a.s.auth.Login(ctx, services.LoginRequest{
		IdentityHandle: req.IdentityHandle,
		Password:       req.Password,
		Proof:          proofFromMetadata(md),
		App: models.AppMetadata{
			Platform:   first(md, common.HeaderPlatform),
			AppID:      first(md, common.HeaderAppID, common.HeaderAppIDAlias),
			AppName:    first(md, common.HeaderAppName, common.HeaderAppNameAlias),
			AppVersion: first(md, common.HeaderAppVersion, common.HeaderAppVersionAlias),
		},
		IP: a.s.remoteIP(ctx),
	})
	a.s.observe("login", err)
	if err != nil {
		return nil, toStatus(err)
	}
	if res.Enrolled {
		a.s.metrics.DevicesEnrolled.Inc()
	}

	return &LoginResponse{
		AccessToken:    res.AccessToken,
		RefreshToken:   res.RefreshToken,
		TokenType:      common.TokenTypeBearer,
		IdentityHandle: res.IdentityHandle,
	}, nil
}

func (a *authService) Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	res, err := a.s.auth.Refresh(ctx, services.RefreshRequest{
		RefreshToken: req.RefreshToken,
		Proof:        proofFromMetadata(md),
		IP:           a.s.remoteIP(ctx),
	})
	a.s.observe("refresh", err)
	if err != nil {
		return nil, toStatus(err)
	}

	return &RefreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    common.TokenTypeBearer,
	}, nil
}

func (a *authService) Logout(ctx context.Context, req *RefreshRequest) (*LogoutResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	err := a.s.auth.Logout(ctx, services.RefreshRequest{
		RefreshToken: req.RefreshToken,
		Proof:        proofFromMetadata(md),
	})
	a.s.observe("logout", err)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LogoutResponse{OK: true}, nil
}

func (a *authService) WhoAmI(ctx context.Context, _ *WhoAmIRequest) (*WhoAmIResponse, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ReasonUnauthorized)
	}
	return &WhoAmIResponse{UserID: p.UserID, ClientID: p.ClientID, Scopes: p.Scopes}, nil
}
