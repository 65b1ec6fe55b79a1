package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"obsync/config"
	"obsync/state"
)

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Writes default or active configuration (YAML)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write configuration embedded into the program"},
		},
		Action:    dumpConfig,
		ArgsUsage: "DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    file to write configuration to, if absent - STDOUT

Active configuration is embedded defaults overlaid with values from the file
given by --config. Secrets are masked.
`, cli.CommandHelpTemplate),
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		kind = "active"
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	var out io.Writer = cmd.Root().Writer
	dest := cmd.Args().Get(0)
	if len(dest) > 0 {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dest, err)
		}
		defer func() {
			if er := f.Close(); er != nil && err == nil {
				err = fmt.Errorf("unable to close destination file '%s': %w", dest, er)
			}
		}()
		out = f
	} else {
		dest = "STDOUT"
	}
	env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("destination", dest))

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
