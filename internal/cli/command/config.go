package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/config"
)

// ConfigCommand returns the config command group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show and edit configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration (file, environment and flags)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "show-secrets",
						Usage: "print secrets instead of masking them",
					},
				},
				Action: configShowAction,
			},
			{
				Name:      "get",
				Usage:     "Print one effective value",
				ArgsUsage: "KEY",
				Action:    configGetAction,
			},
			{
				Name:      "set",
				Usage:     "Set a value in the config file",
				ArgsUsage: "KEY VALUE",
				Action:    configSetAction,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPathAction,
			},
			{
				Name:   "validate",
				Usage:  "Check the effective configuration",
				Action: configValidateAction,
			},
			{
				Name:   "keys",
				Usage:  "List settable keys",
				Action: configKeysAction,
			},
		},
	}
}

func configShowAction(c *cli.Context) error {
	cfg, _, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	return render(c, nil, cfg.Flatten(c.Bool("show-secrets")))
}

func configGetAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError("usage: config get KEY")
	}
	cfg, _, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	v, err := cfg.Get(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(envFrom(c).out, v)
	return nil
}

func configSetAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError("usage: config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	path := c.String("config")

	// Edit the file alone so environment and flag values are not persisted.
	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("not saved:\n%w", err)
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(envFrom(c).out, "%s updated in %s\n", key, path)
	return nil
}

func configPathAction(c *cli.Context) error {
	fmt.Fprintln(envFrom(c).out, c.String("config"))
	return nil
}

func configValidateAction(c *cli.Context) error {
	cfg, path, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s:\n%w", path, err)
	}
	fmt.Fprintln(envFrom(c).out, "configuration is valid")
	return nil
}

func configKeysAction(c *cli.Context) error {
	out := envFrom(c).out
	for _, k := range config.Keys() {
		fmt.Fprintln(out, k)
	}
	return nil
}
