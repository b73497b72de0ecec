package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/jmhart/crewlog/internal/auth"
	"github.com/jmhart/crewlog/internal/config"
	"github.com/jmhart/crewlog/internal/identity"
	"github.com/jmhart/crewlog/internal/server"
	"github.com/jmhart/crewlog/internal/service"
	"github.com/jmhart/crewlog/internal/storage"
	"github.com/jmhart/crewlog/internal/storage/sqlite"
	"github.com/jmhart/crewlog/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	groups := storage.NewGroups(store)
	identities := identity.NewProvider(store)
	tokens := auth.NewDeviceTokens(cfg.TokenSecret, cfg.TokenTTL)

	srv := server.New(service.NewGroupService(groups), identities, tokens)

	// h2c allows HTTP/2 without TLS for clients that want it.
	handler := h2c.NewHandler(srv.Router(), &http2.Server{})

	slog.Info("server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
