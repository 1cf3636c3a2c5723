package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/output"
	"github.com/yndnr/authclient/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			out := envFrom(c).out
			f, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			if f == output.FormatTable {
				fmt.Fprintln(out, buildinfo.String())
				return nil
			}
			return output.NewFormatter(f).Format(out, buildinfo.Get())
		},
	}
}
