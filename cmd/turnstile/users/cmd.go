package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrebq/turnstile/account"
	"github.com/andrebq/turnstile/internal/cmdflags"
	"github.com/andrebq/turnstile/internal/config"
	"github.com/andrebq/turnstile/password"
	"github.com/andrebq/turnstile/userdb"
	"github.com/urfave/cli/v2"
)

func Cmd(configFile *string) *cli.Command {
	var svc *account.Service
	var db *userdb.DB
	var dbPath, pepperEnvVar string
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the users stored in the database",
		Flags: []cli.Flag{
			cmdflags.Database(&dbPath),
			cmdflags.PepperEnvVar(&pepperEnvVar),
		},
		Before: func(ctx *cli.Context) error {
			var err error
			svc, db, err = open(ctx.Context, *configFile, dbPath, pepperEnvVar)
			return err
		},
		After: func(ctx *cli.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
		Subcommands: []*cli.Command{
			addCmd(&svc),
			resetTokenCmd(&svc),
		},
	}
}

func open(ctx context.Context, configFile, dbPath, pepperEnvVar string) (*account.Service, *userdb.DB, error) {
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	pepper, err := password.PepperFromEnv(pepperEnvVar, os.Getenv, os.Setenv)
	if err != nil {
		return nil, nil, err
	}
	hasher, err := password.ByName(cfg.Password.Hasher, cfg.Password.BcryptCost, pepper)
	if err != nil {
		return nil, nil, err
	}
	db, err := userdb.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return account.NewService(db, hasher), db, nil
}

func addCmd(svc **account.Service) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "add",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user to register",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if sc.Err() != nil {
					return sc.Err()
				}
				return errors.New("missing password from stdin")
			}
			secret := strings.TrimSpace(sc.Text())
			if len(secret) == 0 {
				return errors.New("missing password from stdin")
			}
			p, err := (*svc).Register(ctx.Context, email, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, p.ID)
			return nil
		},
	}
}

func resetTokenCmd(svc **account.Service) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "reset-token",
		Usage: "Generate a password reset token for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			token, err := (*svc).ResetPasswordToken(ctx.Context, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, token)
			return nil
		},
	}
}
