package dating

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/matchbox/internal/domain"
)

// Client is a typed DatingService client. Every call is sent with the JSON
// content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*domain.User, error) {
	return invoke[domain.User](ctx, c.cc, "CreateUser", in, opts)
}

func (c *Client) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*domain.User, error) {
	return invoke[domain.User](ctx, c.cc, "GetUser", in, opts)
}

func (c *Client) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "ListUsers", in, opts)
}

func (c *Client) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*domain.User, error) {
	return invoke[domain.User](ctx, c.cc, "UpdateUser", in, opts)
}

func (c *Client) RemoveUser(ctx context.Context, in *RemoveUserRequest, opts ...grpc.CallOption) (*RemoveUserResponse, error) {
	return invoke[RemoveUserResponse](ctx, c.cc, "RemoveUser", in, opts)
}

func (c *Client) LikeUser(ctx context.Context, in *LikeUserRequest, opts ...grpc.CallOption) (*domain.Like, error) {
	return invoke[domain.Like](ctx, c.cc, "LikeUser", in, opts)
}

func (c *Client) LikedUsers(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "LikedUsers", in, opts)
}

func (c *Client) Matches(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "Matches", in, opts)
}

func (c *Client) PotentialMatches(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "PotentialMatches", in, opts)
}

func (c *Client) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*domain.User, error) {
	return invoke[domain.User](ctx, c.cc, "Authenticate", in, opts)
}

func (c *Client) CreateImageUploadURL(ctx context.Context, in *ImageUploadRequest, opts ...grpc.CallOption) (*ImageUploadResponse, error) {
	return invoke[ImageUploadResponse](ctx, c.cc, "CreateImageUploadURL", in, opts)
}

func (c *Client) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*domain.Message, error) {
	return invoke[domain.Message](ctx, c.cc, "SendMessage", in, opts)
}

func (c *Client) Conversation(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*MessagesResponse, error) {
	return invoke[MessagesResponse](ctx, c.cc, "Conversation", in, opts)
}

func (c *Client) Conversations(ctx context.Context, in *UserIDRequest, opts ...grpc.CallOption) (*ConversationsResponse, error) {
	return invoke[ConversationsResponse](ctx, c.cc, "Conversations", in, opts)
}

func (c *Client) MarkAsRead(ctx context.Context, in *MarkAsReadRequest, opts ...grpc.CallOption) (*domain.Message, error) {
	return invoke[domain.Message](ctx, c.cc, "MarkAsRead", in, opts)
}

func (c *Client) MarkConversationAsRead(ctx context.Context, in *MarkConversationAsReadRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	return invoke[SuccessResponse](ctx, c.cc, "MarkConversationAsRead", in, opts)
}

// MessageAddedClient receives messages from the MessageAdded stream.
type MessageAddedClient interface {
	Recv() (*domain.Message, error)
	grpc.ClientStream
}

type messageAddedClient struct {
	grpc.ClientStream
}

func (x *messageAddedClient) Recv() (*domain.Message, error) {
	m := new(domain.Message)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// MessageAdded subscribes to newly sent messages until ctx is cancelled.
func (c *Client) MessageAdded(ctx context.Context, in *MessageAddedRequest, opts ...grpc.CallOption) (MessageAddedClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod("MessageAdded"), opts...)
	if err != nil {
		return nil, err
	}
	x := &messageAddedClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
