// Package commands implements command line actions on top of the engine.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"obsync/engine"
	"obsync/fetch"
	"obsync/playback"
	"obsync/state"
)

// Commands returns subcommands served by this package.
func Commands() []*cli.Command {
	langFlag := &cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "story language `CODE`, remembered for later runs"}
	return []*cli.Command{
		{
			Name:      "catalog",
			Usage:     "Loads content catalog archive and lists available languages",
			Action:    Catalog,
			ArgsUsage: "[SOURCE]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "tree", Usage: "print complete catalog structure"},
				&cli.BoolFlag{Name: "all", Usage: "list languages without content too"},
			},
			CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    URL or path of catalog archive, if absent - configured location
`, cli.CommandHelpTemplate),
		},
		{
			Name:      "story",
			Usage:     "Fetches story and prints its episodes",
			Action:    Story,
			ArgsUsage: "NUMBER",
			Flags: []cli.Flag{
				langFlag,
				&cli.BoolFlag{Name: "captions", Usage: "split episode text into sentences"},
			},
		},
		{
			Name:      "play",
			Usage:     "Plays story audio headless following episodes in sync",
			Action:    Play,
			ArgsUsage: "NUMBER",
			Flags: []cli.Flag{
				langFlag,
				&cli.DurationFlag{Name: "duration", Usage: "simulated audio `LENGTH`, if absent - derived from story timing"},
				&cli.BoolFlag{Name: "restart", Usage: "ignore remembered position and play from the beginning"},
			},
		},
	}
}

// newEngine creates engine sharing program configuration, report and
// preferences. Audio is played by simulated backend.
func newEngine(env *state.LocalEnv, durations func(context.Context, string) (time.Duration, error)) (*engine.Engine, error) {
	store, err := env.OpenPrefs()
	if err != nil {
		return nil, fmt.Errorf("unable to open preferences: %w", err)
	}
	if durations == nil {
		durations = playback.FixedDuration(time.Minute)
	}
	backend := &playback.Simulated{DurationFunc: durations}
	f := fetch.New(&env.Cfg.Fetch, env.Log, fetch.WithReport(env.Rpt))
	return engine.New(env.Cfg, backend, store, env.Log, engine.WithFetcher(f), engine.WithReport(env.Rpt)), nil
}

// useLanguage restores previous choices and applies language requested on
// command line if any.
func useLanguage(ctx context.Context, e *engine.Engine, cmd *cli.Command, log *zap.Logger) error {
	if err := e.Restore(ctx); err != nil {
		log.Warn("Unable to restore preferences", zap.Error(err))
	}
	if lang := cmd.String("lang"); len(lang) > 0 {
		return e.SelectLanguage(ctx, lang)
	}
	if len(e.Snapshot().Language) == 0 {
		return errors.New("no language has been selected, use --lang")
	}
	return nil
}

// storyIndex returns 0-based index of the story given by 1-based number.
func storyIndex(cmd *cli.Command, count int) (int, error) {
	arg := cmd.Args().Get(0)
	if len(arg) == 0 {
		return 0, errors.New("no story number has been specified")
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("story number must be between 1 and %d, got %q", count, arg)
	}
	return n - 1, nil
}
