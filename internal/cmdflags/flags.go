package cmdflags

import (
	"github.com/andrebq/turnstile/password"
	"github.com/urfave/cli/v2"
)

func Config(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Optional config file, keys use the same names as the environment variables",
		EnvVars:     []string{"TURNSTILE_CONFIG"},
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind, overrides API_HOST and API_PORT",
		Destination: out,
		Value:       *out,
	}
}

func Database(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"database"},
		Usage:       "Path to the user database, overrides DATABASE_PATH",
		Destination: out,
		Value:       *out,
	}
}

func PepperEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = password.PepperEnvVar
	}
	return &cli.StringFlag{
		Name:        "pepper-envvar-name",
		Usage:       "Name of the environment variable that holds the password pepper. The pepper itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}
