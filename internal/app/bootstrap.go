package app

import (
	"log/slog"

	"maker_go/internal/infra"
	"maker_go/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logging and
// the order journal.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("Bootstrapping", "app", cfg.App.Name, "version", cfg.App.Version)

	if cfg.Journal.Enabled {
		journal, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("Order journal ready")
	}

	return nil
}
