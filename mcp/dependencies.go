package mcp

import (
	"io"
	"log/slog"

	"github.com/ludo-technologies/pqhint/app"
	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/logging"
	"github.com/ludo-technologies/pqhint/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	loader     *service.ProjectLoaderImpl
	configPath string
	logger     *slog.Logger
}

// NewDependencies constructs the dependency set. Logs go to logOutput,
// which must not be stdout since MCP speaks JSON-RPC there.
func NewDependencies(configPath string, logOutput io.Writer) *Dependencies {
	logger := logging.NewDiscardLogger()
	if logOutput != nil {
		logger = logging.NewLogger(logOutput, slog.LevelInfo)
	}
	return &Dependencies{
		loader:     service.NewProjectLoader(nil),
		configPath: configPath,
		logger:     logger,
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildRecommendUseCase assembles a fresh use case. explicit names the
// tool arguments that override configuration values.
func (d *Dependencies) BuildRecommendUseCase(explicit map[string]bool) (*app.RecommendUseCase, error) {
	svc := service.NewRecommendService(d.loader, service.NewFileReader(d.loader.Extensions()...), nil, d.logger)
	return app.NewRecommendUseCaseBuilder().
		WithService(svc).
		WithFormatter(service.NewRecommendFormatter()).
		WithConfigLoader(service.NewConfigurationLoader(explicit)).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		Build()
}

// Loader exposes the project loader.
func (d *Dependencies) Loader() domain.ProjectLoader {
	return d.loader
}
