package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/output"
	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/core/service"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session",
		Description: "Missing values are prompted for when stdin is a terminal.\n" +
			"The session is kept per server until logout.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "account username",
				EnvVars: []string{"AUTHCLIENT_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "account password (prompted when omitted)",
				EnvVars: []string{"AUTHCLIENT_PASSWORD"},
			},
		},
		Action: loginAction,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored session",
		Action: logoutAction,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user and token details",
		Action: whoamiAction,
	}
}

// loginResult is what login prints.
type loginResult struct {
	Username string       `json:"username" yaml:"username"`
	Role     domain.Role  `json:"role" yaml:"role"`
	Route    domain.Route `json:"route" yaml:"route"`
}

func loginAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	env := envFrom(c)
	d := rt.deps()

	username, err := askIfEmpty(env.prompt, c.String("username"), "Username", false)
	if err != nil {
		return err
	}
	password, err := askIfEmpty(env.prompt, c.String("password"), "Password", true)
	if err != nil {
		return err
	}

	flow := service.NewLoginFlow(d.client, d.sessions, rt.flowOptions()...)

	stop := startSpinner(env, "Signing in")
	nav, err := flow.Submit(c.Context, domain.Credentials{Username: username, Password: password})
	stop()
	if err != nil {
		return err
	}

	res := loginResult{Username: nav.User.Username, Role: nav.User.Role, Route: nav.Route}

	f, err := formatFor(c, rt)
	if err != nil {
		return err
	}
	if f != output.FormatTable {
		return output.NewFormatter(f).Format(env.out, res)
	}
	fmt.Fprintf(env.out, "Logged in as %s (%s)\n", res.Username, res.Role)
	fmt.Fprintf(env.out, "-> %s\n", res.Route)
	return nil
}

func logoutAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	d := rt.deps()

	flow := service.NewLoginFlow(d.client, d.sessions, rt.flowOptions()...)
	nav, err := flow.Logout(c.Context)
	if err != nil {
		return err
	}

	out := envFrom(c).out
	fmt.Fprintln(out, "Logged out")
	fmt.Fprintf(out, "-> %s\n", nav.Route)
	return nil
}

// whoami is what whoami prints for json and yaml.
type whoami struct {
	Server string             `json:"server" yaml:"server"`
	User   domain.User        `json:"user" yaml:"user"`
	Token  *service.TokenInfo `json:"token,omitempty" yaml:"token,omitempty"`
}

func whoamiAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	d := rt.deps()

	sess, ok := d.sessions.Load(c.Context)
	if !ok {
		return domain.ErrUnauthenticated
	}

	res := whoami{Server: d.cfg.Server, User: sess.User}
	if info, err := service.InspectToken(sess.Token, time.Now()); err == nil {
		res.Token = info
	} else {
		rt.log.Debug("token not inspectable", "error", err)
	}

	f, err := formatFor(c, rt)
	if err != nil {
		return err
	}
	if f != output.FormatTable {
		return output.NewFormatter(f).Format(envFrom(c).out, res)
	}

	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("server", res.Server)
	if res.User.ID != 0 {
		t.AddRow("id", fmt.Sprint(res.User.ID))
	}
	t.AddRow("username", res.User.Username)
	t.AddRow("role", res.User.Role.String())
	if tok := res.Token; tok != nil {
		t.AddRow("token", tok.Algorithm)
		if tok.Subject != "" {
			t.AddRow("subject", tok.Subject)
		}
		if tok.ExpiresAt != nil {
			state := "valid"
			if tok.Expired {
				state = "expired"
			}
			t.AddRow("expires", fmt.Sprintf("%s (%s)", tok.ExpiresAt.Local().Format(time.RFC3339), state))
		}
	} else {
		t.AddRow("token", "opaque")
	}
	return t.Render(envFrom(c).out)
}
