// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/praval-labs/praval/internal/config"
	"github.com/praval-labs/praval/internal/infrastructure"
	"github.com/praval-labs/praval/internal/pipeline"
	"github.com/praval-labs/praval/pkg/middleware"
	"github.com/praval-labs/praval/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned orchestrator must be registered with the lifecycle for
// startup and drain.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *pipeline.Orchestrator, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain.Pipeline, nil
}
