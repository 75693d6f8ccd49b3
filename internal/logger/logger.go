package logger

import (
	"go.uber.org/zap"

	"deckdrill/internal/config"
)

// New builds the process logger: JSON in production, console otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
