package injector

import (
	"fmt"
	"math"

	"github.com/google/wire"

	"github.com/tngrm/tngrm/internal/config"
	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/internal/core/raster"
	"github.com/tngrm/tngrm/internal/core/solver"
	"github.com/tngrm/tngrm/internal/core/validation"
	"github.com/tngrm/tngrm/internal/levels"
	"github.com/tngrm/tngrm/internal/server"
)

// ProviderSet builds a Server from a Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideTable,
	ProvideChecker,
	ProvideDetector,
	ProvideBus,
	ProvideStore,
	wire.Bind(new(levels.Store), new(*levels.FileStore)),
	ProvideServer,
)

// ProvideLogger builds the process logger at the configured level.
func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.LogLevel())
}

func ProvideTable(cfg config.Config) (*pieces.Table, error) {
	return cfg.LoadPieces()
}

func ProvideChecker(cfg config.Config, table *pieces.Table) *solver.Checker {
	return solver.NewChecker(table, validation.NewValidator(cfg.Validation), raster.New(cfg.Raster.Size))
}

// ProvideDetector builds the magnet detector at the configured threshold.
func ProvideDetector(cfg config.Config) (magnet.Detector, error) {
	t := cfg.Magnet.Threshold
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return magnet.Detector{}, fmt.Errorf("%w: magnet threshold %v", config.ErrInvalidConfig, t)
	}
	return magnet.New(t), nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

// ProvideStore opens the level file store. The cleanup stops its writer.
func ProvideStore(cfg config.Config, logger log.Log) (*levels.FileStore, func()) {
	store := levels.NewFileStore(cfg.Server.LevelsFile, logger)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close level store", log.Error(err))
		}
	}
}

// ProvideServer creates the HTTP server. The cleanup closes it.
func ProvideServer(cfg config.Config, store levels.Store, checker *solver.Checker, detector magnet.Detector, eventBus bus.EventBus, logger log.Log) (*server.Server, func(), error) {
	srv, err := server.New(cfg.Server, store, checker, detector, eventBus, logger)
	if err != nil {
		return nil, nil, err
	}
	return srv, func() { _ = srv.Close() }, nil
}
