package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/config"
	"github.com/yndnr/authclient/internal/cli/repl"
	"github.com/yndnr/authclient/internal/infra/shutdown"
)

// ReplCommand returns the repl command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session",
		Description: "Runs commands without the program name. The config file is watched\n" +
			"and reloaded on change. Ctrl-C cancels the running request.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "do not reload the config file on change",
			},
		},
		Action: replAction,
	}
}

// commandPaths lists "cmd" and "cmd sub" for every command, for completion.
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		paths = append(paths, cmd.Name)
		for _, sub := range cmd.Subcommands {
			paths = append(paths, cmd.Name+" "+sub.Name)
		}
	}
	return paths
}

func replAction(c *cli.Context) error {
	env := envFrom(c)
	if env.interactive {
		return errors.New("already in interactive mode")
	}

	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	// The runtime itself is closed by the app's After hook once the REPL
	// returns; h only tears down what the REPL adds.
	h := shutdown.NewHandler(5 * time.Second)
	defer h.Shutdown()

	env.interactive = true
	defer func() { env.interactive = false }()

	if !c.Bool("no-watch") {
		w, err := config.Watch(rt.configPath, rt.overrides, rt.log, rt.Reload)
		if err != nil {
			rt.log.Warn("config file not watched", "path", rt.configPath, "error", err)
		} else {
			h.OnClose(w.Stop)
		}
	}

	history := repl.NewHistory(config.DefaultHistoryPath())
	if err := history.Load(); err != nil {
		rt.log.Warn("history not loaded", "error", err)
	}
	h.OnClose(history.Save)

	app := c.App
	base := replBaseArgs(c, rt)
	exec := func(ctx context.Context, args []string) error {
		return app.RunContext(ctx, append(append([]string{}, base...), args...))
	}

	r := repl.New(exec,
		repl.WithIO(env.in, env.out),
		repl.WithPrompt(func() string { return promptFor(c.Context, rt) }),
		repl.WithCompleter(repl.NewCompleter(append(commandPaths(app.Commands), "help")...)),
		repl.WithHistory(history),
		repl.WithErrorHandler(func(err error) { PrintError(env.errOut, err) }),
		repl.WithInterrupt(),
	)

	fmt.Fprintf(env.out, "authclient %s, type help for commands, exit to quit\n", app.Version)
	// Interrupts cancel the running command only; exit or end of input
	// leaves the loop.
	return r.Run(context.WithoutCancel(c.Context))
}

// replBaseArgs carries the global flags given to "authclient repl" into
// each command run inside it.
func replBaseArgs(c *cli.Context, rt *Runtime) []string {
	args := []string{c.App.Name, "--config", rt.configPath}
	for _, name := range []string{"server", "output", "metrics-file"} {
		for _, ctx := range c.Lineage() {
			if ctx.IsSet(name) {
				args = append(args, "--"+name, ctx.String(name))
				break
			}
		}
	}
	if c.Bool("verbose") {
		args = append(args, "--verbose")
	}
	return args
}

// promptFor shows the signed-in user, if any.
func promptFor(ctx context.Context, rt *Runtime) string {
	if sess, ok := rt.deps().sessions.Load(ctx); ok {
		return fmt.Sprintf("%s@%s> ", sess.User.Username, sess.User.Role)
	}
	return "authclient> "
}
