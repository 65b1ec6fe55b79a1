// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"obsync/config"
	"obsync/prefs"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// opened lazily by commands which need it, closed on exit
	Prefs prefs.Store
	// overrides preferences path from configuration when set
	PrefsPath string

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// OpenPrefs opens preference store once, later calls return the same store.
func (e *LocalEnv) OpenPrefs() (prefs.Store, error) {
	if e.Prefs != nil {
		return e.Prefs, nil
	}
	cfg := config.PreferencesConfig{}
	if e.Cfg != nil {
		cfg = e.Cfg.Preferences
	}
	if len(e.PrefsPath) > 0 {
		cfg.Path = e.PrefsPath
	}
	store, err := prefs.Open(&cfg)
	if err != nil {
		return nil, err
	}
	if e.Log != nil {
		e.Log.Debug("Preferences opened", zap.String("path", cfg.Path))
	}
	e.Prefs = store
	return store, nil
}

// ClosePrefs is safe to call when preferences were never opened.
func (e *LocalEnv) ClosePrefs() error {
	if e.Prefs == nil {
		return nil
	}
	err := e.Prefs.Close()
	e.Prefs = nil
	return err
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
