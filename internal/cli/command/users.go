package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/core/service"
)

// UsersCommand returns the users command group.
func UsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts (admin)",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List users",
				Action:  usersListAction,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a user",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "skip confirmation",
					},
				},
				Action: usersDeleteAction,
			},
		},
	}
}

func usersListAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	d := rt.deps()

	users, err := service.NewUsersFlow(d.client, d.sessions, rt.flowOptions()...).List(c.Context)
	if err != nil {
		return err
	}
	return render(c, rt, users)
}

func usersDeleteAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError("usage: users delete ID")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return usageError("invalid user ID %q", c.Args().First())
	}

	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	env := envFrom(c)
	d := rt.deps()

	if !c.Bool("force") {
		ok, err := confirm(env.prompt, fmt.Sprintf("Delete user %d?", id))
		if err != nil {
			return fmt.Errorf("confirmation required, use --force: %w", err)
		}
		if !ok {
			fmt.Fprintln(env.out, "Cancelled")
			return nil
		}
	}

	if err := service.NewUsersFlow(d.client, d.sessions, rt.flowOptions()...).Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "User %d deleted\n", id)
	return nil
}
