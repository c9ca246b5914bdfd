//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/tngrm/tngrm/internal/config"
	"github.com/tngrm/tngrm/internal/server"
)

// InitializeServer wires a Server and everything it depends on.
func InitializeServer(cfg config.Config) (*server.Server, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
