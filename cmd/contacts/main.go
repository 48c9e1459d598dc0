// Command contacts is an interactive terminal client for the contacts API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contacts-backend/internal/cmd/contacts"
	"github.com/tbourn/go-contacts-backend/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	sysutil.SetupLogger(os.Stderr, sysutil.FirstNonEmpty(os.Getenv("LOG_LEVEL"), "warn"), true)

	cfg, err := contacts.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := contacts.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("contacts client failed")
	}
}
