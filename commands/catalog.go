package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"obsync/catalog"
	"obsync/common"
	"obsync/state"
)

func Catalog(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("catalog")

	if src := cmd.Args().Get(0); len(src) > 0 {
		env.Cfg.Catalog.ArchiveURL = src
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	e, err := newEngine(env, nil)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if err := e.LoadCatalog(ctx); err != nil {
		return fmt.Errorf("unable to load catalog: %w", err)
	}
	cat := e.Snapshot().Catalog
	log.Info("Catalog loaded", zap.String("source", env.Cfg.Catalog.ArchiveURL),
		zap.Int("languages", len(cat.AvailableLanguages())), zap.Int("named", len(cat.LanguageNames())))

	out := cmd.Root().Writer
	if cmd.Bool("tree") {
		_, err = fmt.Fprint(out, cat.String())
		return err
	}

	codes := cat.AvailableLanguages()
	if cmd.Bool("all") {
		names := cat.LanguageNames()
		codes = make([]string, 0, len(names))
		for code := range names {
			codes = append(codes, code)
		}
		sort.Sort(natural.StringSlice(codes))
	}
	for _, code := range codes {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", code, cat.Names[code].Label(), describe(cat, code)); err != nil {
			return err
		}
	}
	return nil
}

// describe lists content category of every testament of the language.
func describe(cat *catalog.Catalog, code string) string {
	entry, err := cat.Language(code)
	if err != nil {
		return "-"
	}
	parts := make([]string, 0, len(common.TestamentOrder))
	for _, t := range common.TestamentOrder {
		c := "-"
		if te := entry.Testament(t); te != nil {
			c = te.Category.String()
		}
		parts = append(parts, t.String()+":"+c)
	}
	return strings.Join(parts, " ")
}
