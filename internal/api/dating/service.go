package dating

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/matchbox/internal/domain"
)

const ServiceName = "matchbox.dating.v1.DatingService"

// DatingServiceServer is the server API for DatingService. Queries and
// mutations are unary RPCs; the message-created subscription is a server
// stream.
type DatingServiceServer interface {
	CreateUser(context.Context, *CreateUserRequest) (*domain.User, error)
	GetUser(context.Context, *GetUserRequest) (*domain.User, error)
	ListUsers(context.Context, *ListUsersRequest) (*UsersResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*domain.User, error)
	RemoveUser(context.Context, *RemoveUserRequest) (*RemoveUserResponse, error)
	LikeUser(context.Context, *LikeUserRequest) (*domain.Like, error)
	LikedUsers(context.Context, *UserIDRequest) (*UsersResponse, error)
	Matches(context.Context, *UserIDRequest) (*UsersResponse, error)
	PotentialMatches(context.Context, *UserIDRequest) (*UsersResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*domain.User, error)
	CreateImageUploadURL(context.Context, *ImageUploadRequest) (*ImageUploadResponse, error)

	SendMessage(context.Context, *SendMessageRequest) (*domain.Message, error)
	Conversation(context.Context, *ConversationRequest) (*MessagesResponse, error)
	Conversations(context.Context, *UserIDRequest) (*ConversationsResponse, error)
	MarkAsRead(context.Context, *MarkAsReadRequest) (*domain.Message, error)
	MarkConversationAsRead(context.Context, *MarkConversationAsReadRequest) (*SuccessResponse, error)

	MessageAdded(*MessageAddedRequest, MessageAddedServer) error
}

// MessageAddedServer is the server side of the MessageAdded stream.
type MessageAddedServer interface {
	Send(*domain.Message) error
	grpc.ServerStream
}

type messageAddedServer struct {
	grpc.ServerStream
}

func (x *messageAddedServer) Send(m *domain.Message) error {
	return x.ServerStream.SendMsg(m)
}

func RegisterDatingServiceServer(s grpc.ServiceRegistrar, srv DatingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes DatingService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DatingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateUser", DatingServiceServer.CreateUser),
		unary("GetUser", DatingServiceServer.GetUser),
		unary("ListUsers", DatingServiceServer.ListUsers),
		unary("UpdateUser", DatingServiceServer.UpdateUser),
		unary("RemoveUser", DatingServiceServer.RemoveUser),
		unary("LikeUser", DatingServiceServer.LikeUser),
		unary("LikedUsers", DatingServiceServer.LikedUsers),
		unary("Matches", DatingServiceServer.Matches),
		unary("PotentialMatches", DatingServiceServer.PotentialMatches),
		unary("Authenticate", DatingServiceServer.Authenticate),
		unary("CreateImageUploadURL", DatingServiceServer.CreateImageUploadURL),
		unary("SendMessage", DatingServiceServer.SendMessage),
		unary("Conversation", DatingServiceServer.Conversation),
		unary("Conversations", DatingServiceServer.Conversations),
		unary("MarkAsRead", DatingServiceServer.MarkAsRead),
		unary("MarkConversationAsRead", DatingServiceServer.MarkConversationAsRead),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "MessageAdded",
			Handler:       messageAddedHandler,
			ServerStreams: true,
		},
	},
	Metadata: "matchbox/dating.json",
}

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(DatingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DatingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DatingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func messageAddedHandler(srv any, stream grpc.ServerStream) error {
	in := new(MessageAddedRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DatingServiceServer).MessageAdded(in, &messageAddedServer{stream})
}
