package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/andrebq/turnstile/internal/cmdflags"
	"github.com/andrebq/turnstile/internal/config"
	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/andrebq/turnstile/userdb"
	"github.com/urfave/cli/v2"
)

func Cmd(configFile *string) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Maintenance of the sessions kept in the database",
		Subcommands: []*cli.Command{
			purgeCmd(configFile),
		},
	}
}

func purgeCmd(configFile *string) *cli.Command {
	var dbPath string
	var olderThan time.Duration
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete sessions older than the given age (defaults to SESSION_DURATION)",
		Flags: []cli.Flag{
			cmdflags.Database(&dbPath),
			&cli.DurationFlag{
				Name:        "older-than",
				Usage:       "Maximum age of the sessions to keep",
				Destination: &olderThan,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.NewConfig(*configFile)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if olderThan <= 0 {
				olderThan = cfg.Session.Duration
			}
			if olderThan <= 0 {
				return errors.New("sessions never expire, use --older-than to pick an age")
			}
			db, err := userdb.Open(ctx.Context, cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := db.PurgeSessions(ctx.Context, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			log.Info().Int64("removed", n).Dur("older_than", olderThan).Msg("Sessions purged")
			fmt.Fprintln(ctx.App.Writer, n)
			return nil
		},
	}
}
