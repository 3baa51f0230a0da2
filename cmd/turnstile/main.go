package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/turnstile/cmd/turnstile/serve"
	"github.com/andrebq/turnstile/cmd/turnstile/sessions"
	"github.com/andrebq/turnstile/cmd/turnstile/users"
	"github.com/andrebq/turnstile/internal/cmdflags"
	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var configFile string
	logLevel := "info"
	app := &cli.App{
		Name:  "turnstile",
		Usage: "Authenticate requests and manage their sessions",
		Flags: []cli.Flag{
			cmdflags.Config(&configFile),
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level of the messages written to stderr",
				EnvVars:     []string{"LOG_LEVEL"},
				Value:       logLevel,
				Destination: &logLevel,
			},
		},
		Before: func(ctx *cli.Context) error {
			log.Logger = logutil.New(os.Stderr, logLevel)
			ctx.Context = logutil.WithLogger(ctx.Context, log.Logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(&configFile),
			users.Cmd(&configFile),
			sessions.Cmd(&configFile),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
