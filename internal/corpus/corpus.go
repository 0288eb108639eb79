// Package corpus reads the documentation tree: it builds the navigation
// forest, walks Markdown files in navigation order and extracts titles.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/natsort"
)

// Ext is the extension of documents in the corpus.
const Ext = ".md"

// Corpus is a read-only view of a documentation directory.
type Corpus struct {
	fsys fs.FS
	log  *slog.Logger
}

// New creates a Corpus over fsys.
func New(fsys fs.FS, log *slog.Logger) *Corpus {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Corpus{fsys: fsys, log: log}
}

// Open creates a Corpus rooted at a directory on disk.
func Open(root string, log *slog.Logger) *Corpus {
	return New(os.DirFS(root), log)
}

// FS returns the underlying filesystem.
func (c *Corpus) FS() fs.FS { return c.fsys }

// SubtreeError records a directory whose listing failed. The directory stays
// in the tree with no children.
type SubtreeError struct {
	Path string
	Err  error
}

func (e *SubtreeError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }

func (e *SubtreeError) Unwrap() error { return e.Err }

// Tree is the navigation forest plus any subtrees that could not be read.
type Tree struct {
	Nodes    doctree.Forest
	Warnings []*SubtreeError
}

// Partial reports whether some subtree was abandoned.
func (t *Tree) Partial() bool { return len(t.Warnings) > 0 }

// Tree builds the navigation forest from the filesystem as it is now.
func (c *Corpus) Tree() (*Tree, error) {
	entries, err := c.readDir(".")
	if err != nil {
		return nil, fmt.Errorf("%w: list corpus root: %v", doctree.ErrReadFailure, err)
	}
	t := &Tree{}
	t.Nodes = c.buildLevel(".", entries, t)
	return t, nil
}

func (c *Corpus) buildLevel(dir string, entries []entry, t *Tree) []*doctree.Node {
	nodes := []*doctree.Node{}
	for _, e := range entries {
		rel := join(dir, e.name)
		if e.dir {
			node := &doctree.Node{Name: e.name, Kind: doctree.KindDirectory, Path: rel, Children: []*doctree.Node{}}
			children, err := c.readDir(rel)
			if err != nil {
				serr := &SubtreeError{Path: rel, Err: err}
				t.Warnings = append(t.Warnings, serr)
				c.log.Warn("skipping unreadable directory", "path", rel, "error", err)
			} else {
				node.Children = c.buildLevel(rel, children, t)
			}
			nodes = append(nodes, node)
			continue
		}
		if isDocument(e.name) {
			stem := strings.TrimSuffix(e.name, Ext)
			nodes = append(nodes, &doctree.Node{Name: stem, Kind: doctree.KindFile, Path: strings.TrimSuffix(rel, Ext)})
		}
	}
	return nodes
}

// File is a Markdown document visited by Walk.
type File struct {
	Path string // Document path without extension
	Name string // File name within the corpus FS, with extension
}

// Walk visits every document in navigation order. Unreadable subtrees are
// logged and skipped. Walk stops at the first error returned by fn.
func (c *Corpus) Walk(fn func(File) error) error {
	entries, err := c.readDir(".")
	if err != nil {
		return fmt.Errorf("%w: list corpus root: %v", doctree.ErrReadFailure, err)
	}
	return c.walkLevel(".", entries, fn)
}

func (c *Corpus) walkLevel(dir string, entries []entry, fn func(File) error) error {
	for _, e := range entries {
		rel := join(dir, e.name)
		if e.dir {
			children, err := c.readDir(rel)
			if err != nil {
				c.log.Warn("skipping unreadable directory", "path", rel, "error", err)
				continue
			}
			if err := c.walkLevel(rel, children, fn); err != nil {
				return err
			}
			continue
		}
		if !isDocument(e.name) {
			continue
		}
		if err := fn(File{Path: strings.TrimSuffix(rel, Ext), Name: rel}); err != nil {
			return err
		}
	}
	return nil
}

// Categories lists the top-level directories.
func (c *Corpus) Categories() ([]string, error) {
	entries, err := c.readDir(".")
	if err != nil {
		return nil, fmt.Errorf("%w: list corpus root: %v", doctree.ErrReadFailure, err)
	}
	var names []string
	for _, e := range entries {
		if e.dir {
			names = append(names, e.name)
		}
	}
	return names, nil
}

// Source returns the Markdown source of the document at docPath.
func (c *Corpus) Source(docPath string) ([]byte, error) {
	name, err := documentName(docPath)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(c.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("%w: %s", doctree.ErrNotFound, docPath)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", doctree.ErrReadFailure, name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", doctree.ErrNotFound, docPath)
	}
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", doctree.ErrReadFailure, name, err)
	}
	return data, nil
}

// IsCategory reports whether p names a directory in the corpus.
func (c *Corpus) IsCategory(p string) bool {
	p = strings.Trim(p, "/")
	if p == "" || !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(c.fsys, p)
	return err == nil && info.IsDir()
}

func documentName(docPath string) (string, error) {
	p := strings.Trim(docPath, "/")
	if p == "" || !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: %q", doctree.ErrNotFound, docPath)
	}
	return p + Ext, nil
}

type entry struct {
	name string
	dir  bool
}

// readDir lists dir sorted naturally, following symlinks to decide whether an
// entry is a directory.
func (c *Corpus) readDir(dir string) ([]entry, error) {
	des, err := fs.ReadDir(c.fsys, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(des))
	for _, de := range des {
		isDir := de.IsDir()
		if de.Type()&fs.ModeSymlink != 0 {
			info, err := fs.Stat(c.fsys, join(dir, de.Name()))
			if err != nil {
				c.log.Warn("skipping broken link", "path", join(dir, de.Name()), "error", err)
				continue
			}
			isDir = info.IsDir()
		}
		entries = append(entries, entry{name: de.Name(), dir: isDir})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return natsort.Compare(a.name, b.name) })
	return entries, nil
}

func isDocument(name string) bool { return strings.HasSuffix(name, Ext) }

func join(dir, name string) string {
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}
