package server

import (
	"github.com/gorilla/mux"
	"google.golang.org/grpc"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// RouteRegistrar mounts a group of REST handlers under its own prefix.
type RouteRegistrar interface {
	Register(r *mux.Router)
}

// Mount pairs a path prefix with the routes served below it.
type Mount struct {
	Prefix string
	Routes RouteRegistrar
	// Limited puts the group behind the per-client rate limiter.
	Limited bool
	// Exempt names routes of a limited group that skip the limiter.
	Exempt []string
}
