package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkStyle selects how root-relative links in a document are written.
type LinkStyle int

const (
	// LinkFragment rewrites "/guide/install" to "#guide/install" so the client
	// router handles the navigation.
	LinkFragment LinkStyle = iota
	// LinkPath leaves links as server paths.
	LinkPath
)

// Postprocess prepares rendered document HTML for display: internal links are
// rewritten for the link style and hand-written "Previous:"/"Next:"
// paragraphs are dropped, since navigation is computed from the tree.
func Postprocess(fragment string, style LinkStyle) (string, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	doc := goquery.NewDocumentFromNode(container)

	if style == LinkFragment {
		doc.Find(`a[href^="/"]`).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if p := internalPath(href); p != "" {
				a.SetAttr("href", "#"+p)
				a.SetAttr("data-doc-path", p)
			}
		})
	}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := p.Text()
		if strings.Contains(text, "Previous:") || strings.Contains(text, "Next:") {
			p.Remove()
		}
	})

	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

// internalPath returns the document path of a root-relative link, or "" for
// links that should be left alone.
func internalPath(href string) string {
	if strings.HasPrefix(href, "//") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	p := strings.TrimLeft(u.Path, "/")
	if p == "" || strings.HasPrefix(p, "http") {
		return ""
	}
	return p
}

// PlainText returns the text content of an HTML fragment with block
// elements separated by blank lines.
func PlainText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return ""
	}
	var paras []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.P, atom.Li, atom.Pre, atom.Blockquote, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Td:
				if t := textContent(n); t != "" {
					paras = append(paras, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(paras, "\n\n")
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
