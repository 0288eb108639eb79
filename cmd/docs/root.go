package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docserve/internal/apiclient"
	"github.com/dgallion1/docserve/internal/config"
	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/docs"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/router"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/stats"
)

type globalFlags struct {
	dir     string
	server  string
	noColor bool
	verbose bool
}

// NewRootCommand builds the docs command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "docs",
		Short:         "Browse a Markdown documentation tree from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	defaultDir := config.Defaults().DocsDir
	if v := os.Getenv("DOCS_DIR"); v != "" {
		defaultDir = v
	}
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", defaultDir, "documentation directory to read")
	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "read from a running docserve at this URL instead of --dir")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colour output")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log warnings to stderr")

	cmd.AddCommand(
		NewTreeCommand(flags),
		NewSearchCommand(flags),
		NewShowCommand(flags),
		NewBrowseCommand(flags),
	)
	return cmd
}

// backend opens the configured documentation source. The returned close
// function releases it.
func (f *globalFlags) backend(stderr io.Writer) (router.Backend, func(), error) {
	if f.server != "" {
		c := apiclient.NewClient(f.server)
		return c, c.Close, nil
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open docs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("open docs directory: %s is not a directory", f.dir)
	}

	level := slog.LevelError
	if f.verbose {
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	c := corpus.Open(f.dir, log)
	svc := docs.NewService(c, render.NewRenderer(render.NewChroma(), log), search.NewScanner(c, log), stats.NewWindow(time.Hour), log)
	return svc, func() {}, nil
}
