package dating

import (
	"google.golang.org/grpc"

	api "github.com/oggyb/matchbox/internal/api/dating"
	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/storage"
)

// Registrar ties the Dating service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	images *storage.ImageStore
}

// NewRegistrar creates a new Registrar for the Dating service
func NewRegistrar(appCtx *app.AppContext, images *storage.ImageStore) *Registrar {
	return &Registrar{appCtx: appCtx, images: images}
}

// Register attaches the Dating service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	service := NewDatingService(r.appCtx, r.images)
	api.RegisterDatingServiceServer(s, service)
}
