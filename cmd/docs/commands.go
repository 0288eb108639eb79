package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/router"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/termdoc"
	"github.com/dgallion1/docserve/internal/tui"
)

// NewTreeCommand creates the 'docs tree' command.
func NewTreeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the navigation tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := flags.backend(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			nav, err := b.Navigation(cmd.Context())
			if err != nil {
				return fmt.Errorf("load navigation: %w", err)
			}
			printTree(cmd.OutOrStdout(), nav, 0)
			return nil
		},
	}
}

func printTree(w io.Writer, nodes []*doctree.Node, depth int) {
	dir := color.New(color.FgCyan, color.Bold)
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsDir() {
			dir.Fprintf(w, "%s%s/\n", indent, n.Name)
			printTree(w, n.Children, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s\n", indent, n.Name)
	}
}

// NewSearchCommand creates the 'docs search' command.
func NewSearchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find lines containing a phrase, case-insensitively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			if _, ok := search.Normalize(query); !ok {
				return fmt.Errorf("query must be at least %d characters", search.MinQueryLen)
			}

			b, closeFn, err := flags.backend(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			hits, err := b.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if len(hits) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}

			file := color.New(color.FgCyan)
			line := color.New(color.FgYellow)
			for _, h := range hits {
				file.Fprint(out, h.File)
				fmt.Fprint(out, ":")
				line.Fprint(out, h.Line)
				fmt.Fprintf(out, "  %s\n", h.Content)
			}
			if len(hits) == search.APILimit {
				color.New(color.Faint).Fprintf(out, "(showing the first %d matches)\n", search.APILimit)
			}
			return nil
		},
	}
}

// NewShowCommand creates the 'docs show' command.
func NewShowCommand(flags *globalFlags) *cobra.Command {
	var (
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Render a document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := flags.backend(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			doc, err := b.Document(cmd.Context(), args[0])
			if errors.Is(err, doctree.ErrNotFound) {
				return fmt.Errorf("no document at %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("load document: %w", err)
			}
			content, err := render.Postprocess(doc.Content, render.LinkPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := []termdoc.Option{termdoc.WithWidth(width)}
			if color.NoColor || !isTerminal(out) {
				opts = append(opts, termdoc.WithPlain())
			}
			r := termdoc.New(opts...)

			if raw {
				md, err := r.Markdown(content)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, md)
				return nil
			}
			text, err := r.Render(content)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
			}
			fmt.Fprint(out, text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown instead of styled text")
	cmd.Flags().IntVar(&width, "width", termdoc.DefaultWidth, "wrap column")
	return cmd
}

// NewBrowseCommand creates the 'docs browse' command.
func NewBrowseCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Open the interactive browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := flags.backend(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			var store router.Storage = router.NewMemoryStorage()
			if p, err := router.DefaultStoragePath(); err == nil {
				store = router.NewFileStorage(p)
			}

			r := router.New(router.Options{Backend: b, Storage: store})
			defer r.Close()

			var start string
			if len(args) == 1 {
				start = args[0]
			}
			return tui.Run(cmd.Context(), r, start)
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
