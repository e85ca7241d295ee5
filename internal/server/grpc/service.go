package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "clientauth.v1.AuthService"

const (
	methodLogin   = "/" + ServiceName + "/Login"
	methodRefresh = "/" + ServiceName + "/Refresh"
	methodLogout  = "/" + ServiceName + "/Logout"
	methodWhoAmI  = "/" + ServiceName + "/WhoAmI"
)

type LoginRequest struct {
	IdentityHandle string `json:"identity_handle"`
	Password       string `json:"password"`
}

type LoginResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	TokenType      string `json:"token_type"`
	IdentityHandle string `json:"identity_handle"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	UserID   string   `json:"user_id"`
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes"`
}

// AuthServiceServer is the server API for AuthService. Client proofs travel
// in request metadata under the same keys as the HTTP headers.
type AuthServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Logout(context.Context, *RefreshRequest) (*LogoutResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
}

// unary adapts one typed method to grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthServiceDesc describes AuthService for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(methodLogin, AuthServiceServer.Login)},
		{MethodName: "Refresh", Handler: unary(methodRefresh, AuthServiceServer.Refresh)},
		{MethodName: "Logout", Handler: unary(methodLogout, AuthServiceServer.Logout)},
		{MethodName: "WhoAmI", Handler: unary(methodWhoAmI, AuthServiceServer.WhoAmI)},
	},
	Streams: []grpc.StreamDesc{},
}

// AuthServiceClient calls AuthService using the JSON codec.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, methodLogin, in, opts)
}

func (c *AuthServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c.cc, methodRefresh, in, opts)
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, methodLogout, in, opts)
}

func (c *AuthServiceClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, methodWhoAmI, in, opts)
}
