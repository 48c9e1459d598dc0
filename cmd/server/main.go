// Command server runs the contacts REST API.
//
//	@title			Contacts API
//	@version		1.0
//	@description	REST API for creating, listing, updating and deleting contacts.
//	@BasePath		/api
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contacts-backend/internal/cmd/server"
	"github.com/tbourn/go-contacts-backend/internal/config"
	"github.com/tbourn/go-contacts-backend/internal/observability"
	"github.com/tbourn/go-contacts-backend/internal/sysutil"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	log.Logger = log.Logger.Hook(observability.TraceHook{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, version, nil); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
