package dating

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/oggyb/matchbox/internal/api/dating"
	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/domain"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/service/messaging"
	"github.com/oggyb/matchbox/internal/service/user"
	"github.com/oggyb/matchbox/internal/storage"
)

// Service implements the DatingService gRPC API.
// It translates wire messages, delegates to the user and messaging services
// and maps their errors onto gRPC status codes.
type Service struct {
	appCtx   *app.AppContext
	users    *user.Service
	messages *messaging.Service
	images   *storage.ImageStore
}

var _ api.DatingServiceServer = (*Service)(nil)

// NewDatingService builds the service from AppContext. images may be nil,
// in which case CreateImageUploadURL reports the feature as unavailable.
func NewDatingService(appCtx *app.AppContext, images *storage.ImageStore) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    user.NewUserService(appCtx),
		messages: messaging.NewMessagingService(appCtx),
		images:   images,
	}
}

// --- users ---

func (s *Service) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*domain.User, error) {
	u, err := s.users.Register(ctx, user.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Bio:          req.Bio,
		Age:          req.Age,
		ProfileImage: req.ProfileImage,
		Images:       req.Images,
		Gender:       req.Gender,
		InterestedIn: req.InterestedIn,
		Location:     req.Location,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, req *api.GetUserRequest) (*domain.User, error) {
	u, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, _ *api.ListUsersRequest) (*api.UsersResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UsersResponse{Users: users}, nil
}

func (s *Service) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*domain.User, error) {
	u, err := s.users.Update(ctx, req.ID, user.UpdateInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Bio:          req.Bio,
		Age:          req.Age,
		ProfileImage: req.ProfileImage,
		Images:       req.Images,
		Gender:       req.Gender,
		InterestedIn: req.InterestedIn,
		Location:     req.Location,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) RemoveUser(ctx context.Context, req *api.RemoveUserRequest) (*api.RemoveUserResponse, error) {
	removed, err := s.users.Remove(ctx, req.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.RemoveUserResponse{Removed: removed}, nil
}

// LikeUser records a like. A mutual like shows up in Matches afterwards.
func (s *Service) LikeUser(ctx context.Context, req *api.LikeUserRequest) (*domain.Like, error) {
	like, err := s.users.Like(ctx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return like, nil
}

func (s *Service) LikedUsers(ctx context.Context, req *api.UserIDRequest) (*api.UsersResponse, error) {
	users, err := s.users.ListLiked(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UsersResponse{Users: users}, nil
}

func (s *Service) Matches(ctx context.Context, req *api.UserIDRequest) (*api.UsersResponse, error) {
	users, err := s.users.ListMatches(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UsersResponse{Users: users}, nil
}

func (s *Service) PotentialMatches(ctx context.Context, req *api.UserIDRequest) (*api.UsersResponse, error) {
	users, err := s.users.ListPotentialMatches(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UsersResponse{Users: users}, nil
}

func (s *Service) Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*domain.User, error) {
	u, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// CreateImageUploadURL presigns an upload for a profile image of an
// existing user.
func (s *Service) CreateImageUploadURL(ctx context.Context, req *api.ImageUploadRequest) (*api.ImageUploadResponse, error) {
	if s.images == nil {
		return nil, status.Error(codes.Unimplemented, "image uploads are not configured")
	}
	if _, err := s.users.Get(ctx, req.UserID); err != nil {
		return nil, svcErr.Map(err)
	}

	up, err := s.images.PresignUpload(ctx, req.UserID, req.ContentType)
	if err != nil {
		s.appCtx.Logger.Error("PresignUpload failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &api.ImageUploadResponse{
		Key:       up.Key,
		UploadURL: up.UploadURL,
		ViewURL:   up.ViewURL,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

// --- messages ---

func (s *Service) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*domain.Message, error) {
	m, err := s.messages.SendMessage(ctx, req.Content, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return m, nil
}

func (s *Service) Conversation(ctx context.Context, req *api.ConversationRequest) (*api.MessagesResponse, error) {
	msgs, err := s.messages.GetConversationThread(ctx, req.UserID1, req.UserID2)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.MessagesResponse{Messages: msgs}, nil
}

func (s *Service) Conversations(ctx context.Context, req *api.UserIDRequest) (*api.ConversationsResponse, error) {
	convs, err := s.messages.ListConversations(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ConversationsResponse{Conversations: convs}, nil
}

func (s *Service) MarkAsRead(ctx context.Context, req *api.MarkAsReadRequest) (*domain.Message, error) {
	m, err := s.messages.MarkMessageRead(ctx, req.MessageID, req.ReaderID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return m, nil
}

func (s *Service) MarkConversationAsRead(ctx context.Context, req *api.MarkConversationAsReadRequest) (*api.SuccessResponse, error) {
	ok, err := s.messages.MarkConversationRead(ctx, req.UserID, req.OtherUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.SuccessResponse{Success: ok}, nil
}

// MessageAdded streams every newly sent message until the client goes away.
//
// Behavior:
//   - With req.UserID set, only messages that user sent or received are sent.
//   - If the feed closes underneath (bus shutdown or a subscriber too slow to
//     keep up) the stream ends with Unavailable so the client can resubscribe.
func (s *Service) MessageAdded(req *api.MessageAddedRequest, stream api.MessageAddedServer) error {
	ctx := stream.Context()

	feed, stop, err := s.messages.Subscribe(ctx)
	if err != nil {
		return svcErr.Map(err)
	}
	defer stop()

	s.appCtx.Logger.Debug("MessageAdded subscribed", "user", req.UserID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-feed:
			if !ok {
				return status.Error(codes.Unavailable, "message feed closed")
			}
			if !m.Involves(req.UserID) {
				continue
			}
			if err := stream.Send(&m); err != nil {
				return err
			}
		}
	}
}
