package commands

import (
	"context"
	"fmt"
	"io"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"obsync/engine"
	"obsync/playback"
	"obsync/state"
	"obsync/story"
)

func Story(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("story")

	index, err := storyIndex(cmd, env.Cfg.Stories.Count)
	if err != nil {
		return err
	}

	e, err := newEngine(env, nil)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if err := useLanguage(ctx, e, cmd, log); err != nil {
		return err
	}
	if err := e.LoadStory(ctx, index); err != nil {
		return fmt.Errorf("unable to load story %d: %w", index+1, err)
	}

	snap := e.Snapshot()
	st, _ := snap.Story(index)
	log.Debug("Story loaded", zap.Int("story", index+1), zap.String("lang", snap.Language), zap.Int("episodes", len(st.Episodes)))

	var splitter *story.Splitter
	if cmd.Bool("captions") {
		splitter = story.NewSplitter(snap.Language, log)
	}
	return printStory(cmd.Root().Writer, &snap, index, splitter, cmd.Bool("captions"))
}

func printStory(out io.Writer, snap *engine.Snapshot, index int, splitter *story.Splitter, captions bool) error {
	st, _ := snap.Story(index)
	table := snap.Timings[index]

	if _, err := fmt.Fprintf(out, "%d. %s\n", index+1, st.DisplayTitle()); err != nil {
		return err
	}
	for i, ep := range st.Episodes {
		start := "-"
		if pos, ok := table.Start(i); ok {
			start = playback.FormatTime(pos)
		}
		if _, err := fmt.Fprintf(out, "\n[%d/%d] %s %s\n", i+1, len(st.Episodes), start, ep.ImageRef); err != nil {
			return err
		}
		lines := []string{ep.Text}
		if captions {
			lines = splitter.Captions(ep.Text)
		}
		for _, l := range lines {
			if _, err := fmt.Fprintln(out, l); err != nil {
				return err
			}
		}
	}
	return nil
}
