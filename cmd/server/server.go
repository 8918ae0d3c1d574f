package main

import (
	"context"
	"time"

	"github.com/praval-labs/praval/internal/config"
	"github.com/praval-labs/praval/internal/infrastructure"
	"github.com/praval-labs/praval/internal/pipeline"
)

type Server struct {
	infra    *infrastructure.Infrastructure
	modules  *Modules
	pipeline *pipeline.Orchestrator
	http     *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
	)

	return &Server{
		infra:    infra,
		modules:  modules,
		pipeline: modules.Pipeline,
		http:     newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.pipeline.Start(s.infra.Lifecycle.Context()); err != nil {
		return err
	}

	s.infra.Lifecycle.OnShutdown(func() {
		<-s.infra.Lifecycle.Context().Done()

		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.pipeline.Shutdown(drainCtx); err != nil {
			s.infra.Logger.Error("pipeline drain failed", "error", err)
		}
	})

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
