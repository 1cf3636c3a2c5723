package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/output"
	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/core/service"
)

// RegisterCommand returns the register command group.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a user account (requires a session)",
		Description: "Only an admin session is offered the admin role. --force-role sends\n" +
			"the role anyway and lets the server decide.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "new account username",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "new account password (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "role",
				Aliases: []string{"r"},
				Usage:   "user or admin",
				Value:   string(domain.RoleUser),
			},
			&cli.BoolFlag{
				Name:  "force-role",
				Usage: "send the role even if this session is not offered it",
			},
			&cli.BoolFlag{
				Name:  "no-list",
				Usage: "do not show the user listing afterwards",
			},
		},
		Action: registerAction,
		Subcommands: []*cli.Command{
			{
				Name:   "roles",
				Usage:  "List the roles this session may assign",
				Action: registerRolesAction,
			},
		},
	}
}

func registerAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	env := envFrom(c)
	d := rt.deps()

	flow, err := service.NewRegisterFlow(c.Context, d.client, d.sessions, rt.flowOptions()...)
	if err != nil {
		return err
	}

	username, err := askIfEmpty(env.prompt, c.String("username"), "New username", false)
	if err != nil {
		return err
	}
	password, err := askIfEmpty(env.prompt, c.String("password"), "New password", true)
	if err != nil {
		return err
	}
	if err := flow.SetField(domain.FieldUsername, username); err != nil {
		return err
	}
	if err := flow.SetField(domain.FieldPassword, password); err != nil {
		return err
	}

	role := domain.ParseRole(c.String("role"))
	if c.Bool("force-role") {
		err = flow.SetField(domain.FieldRole, role.String())
	} else {
		err = flow.SelectRole(c.Context, role)
	}
	if err != nil {
		return err
	}

	stop := startSpinner(env, "Creating user")
	nav, err := flow.Submit(c.Context)
	stop()
	if err != nil {
		return err
	}

	f, err := formatFor(c, rt)
	if err != nil {
		return err
	}
	if f != output.FormatTable {
		return output.NewFormatter(f).Format(env.out, nav)
	}

	fmt.Fprintln(env.out, nav.Success)
	fmt.Fprintf(env.out, "-> %s\n", nav.Route)

	if c.Bool("no-list") {
		return nil
	}
	if sess, ok := d.sessions.Load(c.Context); !ok || !sess.IsAdmin() {
		return nil
	}
	users, err := service.NewUsersFlow(d.client, d.sessions, rt.flowOptions()...).List(c.Context)
	if err != nil {
		rt.log.Warn("could not follow up with the user listing", "error", err)
		return nil
	}
	fmt.Fprintln(env.out)
	return output.NewFormatter(output.FormatTable).Format(env.out, users)
}

func registerRolesAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	d := rt.deps()

	flow, err := service.NewRegisterFlow(c.Context, d.client, d.sessions, rt.flowOptions()...)
	if err != nil {
		return err
	}
	roles := flow.RoleOptions(c.Context)

	f, err := formatFor(c, rt)
	if err != nil {
		return err
	}
	if f != output.FormatTable {
		return output.NewFormatter(f).Format(envFrom(c).out, roles)
	}
	t := &output.Table{Headers: []string{"ROLE"}}
	for _, r := range roles {
		t.AddRow(r.String())
	}
	return t.Render(envFrom(c).out)
}
