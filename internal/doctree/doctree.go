// Package doctree holds the domain types shared by the server, the client
// router and the command-line tools: the navigation forest, rendered
// documents and search hits.
package doctree

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Kind distinguishes categories from documents.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// Node is a category (directory) or document (file) in the corpus.
type Node struct {
	Name     string  // Display label: directory name or file stem
	Kind     Kind    // Directory or file
	Path     string  // Slash-separated, relative to the corpus root, no .md suffix
	Children []*Node // Directory only
}

// IsDir reports whether n is a category.
func (n *Node) IsDir() bool { return n.Kind == KindDirectory }

type dirJSON struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"type"`
	Path     string  `json:"path"`
	Children []*Node `json:"children"`
}

type fileJSON struct {
	Name string `json:"name"`
	Kind Kind   `json:"type"`
	Path string `json:"path"`
}

// MarshalJSON emits "children" for every directory, empty or not, and never
// for files.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsDir() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal(dirJSON{Name: n.Name, Kind: n.Kind, Path: n.Path, Children: children})
	}
	return json.Marshal(fileJSON{Name: n.Name, Kind: n.Kind, Path: n.Path})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw dirJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Name, n.Kind, n.Path, n.Children = raw.Name, raw.Kind, raw.Path, raw.Children
	if n.IsDir() && n.Children == nil {
		n.Children = []*Node{}
	}
	return nil
}

// Document is a resolved, rendered corpus file.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"` // Rendered HTML
	Path    string `json:"path"`
}

// Hit is one matching line returned by a search.
type Hit struct {
	File    string `json:"file"`
	Line    int    `json:"line"` // 1-based
	Content string `json:"content"`
	Title   string `json:"title"`
}

// Crumb is one breadcrumb segment. Link is false for the terminal segment.
type Crumb struct {
	Label string
	Path  string
	Link  bool
}

// Breadcrumb splits a document path into crumbs. Every segment but the last
// links to the cumulative sub-path.
func Breadcrumb(path string) []Crumb {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	crumbs := make([]Crumb, len(parts))
	for i, part := range parts {
		crumbs[i] = Crumb{
			Label: part,
			Path:  strings.Join(parts[:i+1], "/"),
			Link:  i < len(parts)-1,
		}
	}
	return crumbs
}

// CategoryOf returns the first segment of a document path.
func CategoryOf(path string) string {
	category, _, _ := strings.Cut(strings.Trim(path, "/"), "/")
	return category
}
