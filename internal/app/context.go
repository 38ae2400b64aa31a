package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/domain"
	"github.com/oggyb/matchbox/internal/events"
)

// AppContext holds shared dependencies (DB, event bus, logger).
// Services read through to the DB on every call and keep no state of their own.
type AppContext struct {
	DB       *gorm.DB
	Messages events.Bus[domain.Message]
	Logger   *slog.Logger
}

// New creates a new AppContext
func New(db *gorm.DB, messages events.Bus[domain.Message], logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:       db,
		Messages: messages,
		Logger:   logger,
	}
}
