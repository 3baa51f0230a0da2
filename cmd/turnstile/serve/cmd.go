package serve

import (
	"os"

	"github.com/andrebq/turnstile/internal/app"
	"github.com/andrebq/turnstile/internal/cmdflags"
	"github.com/andrebq/turnstile/internal/config"
	"github.com/andrebq/turnstile/internal/httpserver"
	"github.com/andrebq/turnstile/password"
	"github.com/urfave/cli/v2"
)

func Cmd(configFile *string) *cli.Command {
	var bind, dbPath, pepperEnvVar string
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the API with the strategy selected by AUTH_TYPE",
		Flags: []cli.Flag{
			cmdflags.Bind(&bind),
			cmdflags.Database(&dbPath),
			cmdflags.PepperEnvVar(&pepperEnvVar),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.NewConfig(*configFile)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if bind == "" {
				bind = cfg.HTTP.Bind()
			}
			pepper, err := password.PepperFromEnv(pepperEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			if pepper != nil {
				defer pepper.Zero()
			}
			a, err := app.Open(ctx.Context, cfg, pepper)
			if err != nil {
				return err
			}
			defer a.Close()
			return httpserver.Serve(ctx.Context, bind, a.Handler())
		},
	}
}
