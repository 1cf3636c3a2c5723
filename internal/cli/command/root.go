package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/config"
	"github.com/yndnr/authclient/internal/cli/output"
	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/infra/buildinfo"
	"github.com/yndnr/authclient/internal/storage"
)

const envKey = "env"

// appEnv is the process environment a command runs in.
type appEnv struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	prompt Prompter
	// kv replaces the configured session storage; it is not closed.
	kv storage.KVEngine
	// interactive is set while commands run inside the REPL.
	interactive bool
}

// Option configures the App.
type Option func(*appEnv)

// WithIO sets standard input, output and error.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(e *appEnv) {
		e.in = in
		e.out = out
		e.errOut = errOut
	}
}

// WithPrompter sets how missing values are asked for.
func WithPrompter(p Prompter) Option {
	return func(e *appEnv) {
		e.prompt = p
	}
}

// WithStorage uses kv for sessions instead of the configured backend.
func WithStorage(kv storage.KVEngine) Option {
	return func(e *appEnv) {
		e.kv = kv
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	env := &appEnv{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(env)
	}
	if env.prompt == nil {
		env.prompt = newTermPrompter(env.in, env.errOut)
	}

	app := &cli.App{
		Name:                 "authclient",
		Usage:                "Command-line client for the authentication API",
		Version:              buildinfo.Version,
		Flags:                globalFlags(),
		Reader:               env.in,
		Writer:               env.out,
		ErrWriter:            env.errOut,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			RegisterCommand(),
			UsersCommand(),
			ConfigCommand(),
			ReplCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{envKey: env},
		After: func(c *cli.Context) error {
			if envFrom(c).interactive {
				return nil
			}
			return closeRuntime(c)
		},
		// Errors are printed once by the caller.
		ExitErrHandler: func(*cli.Context, error) {},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "authentication API base URL (e.g. http://localhost:5000)",
			EnvVars: []string{"AUTHCLIENT_SERVER"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file path",
			EnvVars: []string{"AUTHCLIENT_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "log requests and decisions to stderr",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write Prometheus metrics to this file on exit",
		},
	}
}

func envFrom(c *cli.Context) *appEnv {
	if env, ok := c.App.Metadata[envKey].(*appEnv); ok {
		return env
	}
	return &appEnv{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, prompt: newTermPrompter(os.Stdin, os.Stderr)}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	lineage := c.Lineage()
	isSet := func(name string) (string, bool) {
		for _, ctx := range lineage {
			if ctx.IsSet(name) {
				return ctx.String(name), true
			}
		}
		return "", false
	}

	if v, ok := isSet("server"); ok {
		overrides["server"] = v
	}
	if v, ok := isSet("output"); ok {
		overrides["output"] = v
	}
	if v, ok := isSet("metrics-file"); ok {
		overrides["metrics.file"] = v
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// loadConfig loads the effective configuration for this invocation.
func loadConfig(c *cli.Context) (*config.CLIConfig, string, map[string]any, error) {
	path := c.String("config")
	overrides := flagOverrides(c)
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return nil, path, nil, err
	}
	return cfg, path, overrides, nil
}

// formatFor returns the output format for this invocation.
func formatFor(c *cli.Context, rt *Runtime) (output.Format, error) {
	if o := c.String("output"); o != "" {
		return output.ParseFormat(o)
	}
	if rt != nil {
		return rt.deps().format, nil
	}
	cfg, _, _, err := loadConfig(c)
	if err != nil {
		return "", err
	}
	return output.ParseFormat(cfg.Output)
}

// render writes data to stdout in the selected format.
func render(c *cli.Context, rt *Runtime, data any) error {
	f, err := formatFor(c, rt)
	if err != nil {
		return err
	}
	return output.NewFormatter(f).Format(envFrom(c).out, data)
}

// PrintError writes err to w as "error: <message>" plus one line per
// field error.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var fe domain.FormError
	var de *domain.DomainError
	if ae, ok := domain.AsAuthError(err); ok {
		fe = domain.FormErrorFrom(ae)
	} else if errors.As(err, &de) {
		fe.Message = de.Message
		if de.Details != "" {
			fe.Message += ": " + de.Details
		}
	}
	if fe.Empty() {
		fe.Message = err.Error()
	}
	output.PrintError(w, fe)
}

// usageError reports a command-line mistake.
func usageError(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 2)
}
