package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophauth.AuthService"

// Full method names, as seen by interceptors.
const (
	MethodRegister   = "/" + ServiceName + "/Register"
	MethodLogin      = "/" + ServiceName + "/Login"
	MethodLogout     = "/" + ServiceName + "/Logout"
	MethodGetUser    = "/" + ServiceName + "/GetUser"
	MethodDeleteUser = "/" + ServiceName + "/DeleteUser"
	MethodPing       = "/" + ServiceName + "/Ping"
)

type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// unaryHandler adapts a typed method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
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

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, AuthServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(MethodLogout, AuthServiceServer.Logout)},
		{MethodName: "GetUser", Handler: unaryHandler(MethodGetUser, AuthServiceServer.GetUser)},
		{MethodName: "DeleteUser", Handler: unaryHandler(MethodDeleteUser, AuthServiceServer.DeleteUser)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, AuthServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth.json",
}
