package api

import (
	"net/http"

	"github.com/praval-labs/praval/internal/config"
	"github.com/praval-labs/praval/internal/pipeline"
	"github.com/praval-labs/praval/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Notifications.Handler().Routes(),
		pipeline.NewHandler(domain.Pipeline, runtime.Logger).Routes(),
	)
}
