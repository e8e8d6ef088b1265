// Package server is the public entry point for assembling the Strata
// backend: configuration, telemetry, the remote serving client, the
// storage backend (selected by capability probing) and the HTTP
// router. It lives in pkg/ so deployment wrappers can embed the
// assembled server behind their own middleware.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/handlers"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/remote"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/store"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/telemetry"
)

// Server holds the initialized backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the selected storage backend. Exposed so callers can
	// close it after the HTTP server drains.
	Store store.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc flushes telemetry; call it on graceful shutdown.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration and
// returns a ready Server. Storage initialization never fails hard:
// the selector degrades to the in-memory backend.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var rc *remote.Client
	var remoteForStore store.Remote
	var remoteForChat handlers.RemoteClient
	if cfg.Remote.Configured() {
		rc = remote.NewClient(cfg.Remote)
		remoteForStore = rc
		remoteForChat = rc
	}

	dataStore := store.Open(ctx, cfg, remoteForStore)

	h := handlers.New(dataStore, remoteForChat, cfg.Version)

	return &Server{
		Handler:      api.NewRouter(h),
		Store:        dataStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
