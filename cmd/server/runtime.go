package main

import (
	"log/slog"

	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/pkg/lifecycle"
	"github.com/JaimeStill/pdf-image-server/pkg/logging"
)

// Runtime holds the process-wide infrastructure shared by every module.
type Runtime struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
}

func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{
		Lifecycle: lifecycle.New(),
		Logger:    logging.New(&cfg.Logging),
	}
}
