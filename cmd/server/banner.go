package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 2)

// announce prints a startup box on a terminal and logs a single line
// otherwise, so JSON log streams stay parseable.
func announce(out *os.File, log *slog.Logger, url string, categories []string) {
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		writeBanner(out, url, categories)
		return
	}
	log.Info("documentation ready", "url", url, "categories", categories)
}

func writeBanner(w io.Writer, url string, categories []string) {
	var b strings.Builder
	fmt.Fprintf(&b, "docserve running at %s\n\n", url)
	if len(categories) == 0 {
		b.WriteString("No categories found")
	} else {
		b.WriteString("Categories:")
		for _, c := range categories {
			fmt.Fprintf(&b, "\n  • %s", c)
		}
	}
	fmt.Fprintln(w, bannerStyle.Render(b.String()))
}
