// Package entitlementspb описывает gRPC-сервис marketplace.entitlements.v1.Entitlements.
//
// Сообщения сервиса используют стандартные типы protobuf: запрос google.protobuf.Struct
// с полями user_id и content_id, ответ google.protobuf.BoolValue.
package entitlementspb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName полное имя сервиса.
	ServiceName = "marketplace.entitlements.v1.Entitlements"
	// CanAccessMethod полное имя метода CanAccess.
	CanAccessMethod = "/" + ServiceName + "/CanAccess"

	FieldUserID    = "user_id"
	FieldContentID = "content_id"
)

// EntitlementsServer серверная часть сервиса.
type EntitlementsServer interface {
	CanAccess(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
}

// ServiceDesc описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EntitlementsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CanAccess",
			Handler:    canAccessHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/entitlements/v1/entitlements.proto",
}

// RegisterEntitlementsServer регистрирует реализацию сервиса.
func RegisterEntitlementsServer(s grpc.ServiceRegistrar, srv EntitlementsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func canAccessHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EntitlementsServer).CanAccess(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CanAccessMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EntitlementsServer).CanAccess(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client клиент сервиса для других сервисов платформы.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient создаёт клиента поверх установленного соединения.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CanAccess сообщает, есть ли у пользователя доступ к контенту сейчас.
func (c *Client) CanAccess(ctx context.Context, userID, contentID string, opts ...grpc.CallOption) (bool, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUserID:    structpb.NewStringValue(userID),
		FieldContentID: structpb.NewStringValue(contentID),
	}}
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, CanAccessMethod, in, out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
