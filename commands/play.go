package commands

import (
	"context"
	"fmt"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"obsync/common"
	"obsync/engine"
	"obsync/playback"
	"obsync/prefs"
	"obsync/state"
)

const (
	// used when story has no timing and duration was not requested
	defaultPlayDuration = time.Minute
	// time given to the last episode of timed story
	lastEpisodeTail = 10 * time.Second
)

func Play(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("play")

	index, err := storyIndex(cmd, env.Cfg.Stories.Count)
	if err != nil {
		return err
	}

	var e *engine.Engine
	requested := cmd.Duration("duration")
	durations := func(context.Context, string) (time.Duration, error) {
		if requested > 0 {
			return requested, nil
		}
		snap := e.Snapshot()
		marks := snap.Timings[index].Marks()
		if len(marks) == 0 {
			return defaultPlayDuration, nil
		}
		return time.Duration(marks[len(marks)-1]*float64(time.Second)) + lastEpisodeTail, nil
	}
	if e, err = newEngine(env, durations); err != nil {
		return err
	}
	defer e.Close(ctx)

	if err := useLanguage(ctx, e, cmd, log); err != nil {
		return err
	}
	if err := e.LoadStory(ctx, index); err != nil {
		return fmt.Errorf("unable to load story %d: %w", index+1, err)
	}
	lang := e.Snapshot().Language
	if cmd.Bool("restart") {
		if err := prefs.SetFloat(ctx, env.Prefs, prefs.ResumeKey(lang, index), 0); err != nil {
			log.Warn("Unable to reset resume position", zap.Error(err))
		}
	}

	updates, cancel := e.Subscribe()
	defer cancel()

	if err := e.OpenStory(ctx, index); err != nil {
		return err
	}

	out := cmd.Root().Writer
	snap := e.Snapshot()
	st, _ := snap.Story(index)
	fmt.Fprintf(out, "%d. %s\n", index+1, st.DisplayTitle())

	log.Info("Playback starting", zap.Int("story", index+1), zap.String("lang", lang), zap.Bool("synced", len(snap.Timings[index]) > 0))
	defer func(start time.Time) {
		log.Info("Playback completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	var (
		started bool
		shown   = -1
	)
	for {
		select {
		case <-ctx.Done():
			// remember where we were for the next run
			if err := e.Pause(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Unable to save position", zap.Error(err))
			}
			log.Info("Playback interrupted", zap.String("position", playback.FormatTime(e.Snapshot().Session.Position)))
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			s := snap.Session
			if s.StoryIndex != index {
				continue
			}
			switch {
			case s.Load == common.LoadStateFailed:
				return fmt.Errorf("unable to play story %d: %w", index+1, s.Err)
			case !s.IsLoaded():
				continue
			case !started && s.Transport == common.TransportStateIdle:
				started = true
				e.Play()
				continue
			}
			if snap.Episode != shown && len(st.Episodes) > 0 {
				shown = snap.Episode
				fmt.Fprintf(out, "\n[%d/%d] %s\n", shown+1, len(st.Episodes), playback.FormatTime(s.Position))
				for _, c := range snap.Captions {
					fmt.Fprintln(out, c)
				}
			}
			if s.Transport == common.TransportStateEnded {
				fmt.Fprintf(out, "\n%s ended\n", playback.FormatTime(s.Duration))
				return nil
			}
		}
	}
}
