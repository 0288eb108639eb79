// Package router is the reader-side state machine of the documentation
// browser. It owns navigation, document display, search, layout and theme
// state, and is driven by named transitions from a front end.
package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
)

const (
	// Breakpoint is the widest viewport treated as narrow.
	Breakpoint = 768

	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultBlurGrace      = 200 * time.Millisecond
	DefaultNoticeTTL      = 5 * time.Second

	minQueryLen = 2
	themeKey    = "theme"
)

// Notice messages.
const (
	MsgNavigationFailed = "Error loading navigation"
	MsgDocumentFailed   = "Error loading document"
)

// Backend supplies navigation, documents and search hits.
type Backend interface {
	Navigation(ctx context.Context) (doctree.Forest, error)
	Document(ctx context.Context, path string) (*doctree.Document, error)
	Search(ctx context.Context, query string) ([]doctree.Hit, error)
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type Options struct {
	Backend Backend
	Storage Storage
	Logger  *slog.Logger

	// ViewportWidth is the initial width; zero means wide.
	ViewportWidth int

	SearchDebounce time.Duration
	BlurGrace      time.Duration
	NoticeTTL      time.Duration
	AfterFunc      AfterFunc
}

// Router holds the browser state. All methods are safe for concurrent use;
// listeners run outside the lock after every transition.
type Router struct {
	backend   Backend
	storage   Storage
	log       *slog.Logger
	afterFunc AfterFunc
	debounce  time.Duration
	blurGrace time.Duration
	noticeTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	history     history
	listeners   []func(State)
	searchSeq   int
	searchTimer Timer
	blurTimer   Timer
	navSeq      int
	noticeSeq   int
	notices     map[int]Timer
	closed      bool
}

func New(opts Options) *Router {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.BlurGrace <= 0 {
		opts.BlurGrace = DefaultBlurGrace
	}
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = Breakpoint + 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		backend:   opts.Backend,
		storage:   opts.Storage,
		log:       opts.Logger,
		afterFunc: opts.AfterFunc,
		debounce:  opts.SearchDebounce,
		blurGrace: opts.BlurGrace,
		noticeTTL: opts.NoticeTTL,
		ctx:       ctx,
		cancel:    cancel,
		notices:   map[int]Timer{},
		state: State{
			Theme:         render.ThemeDark,
			ViewportWidth: opts.ViewportWidth,
			SidebarOpen:   opts.ViewportWidth > Breakpoint,
			Collapsed:     map[string]bool{},
		},
	}
}

// OnChange registers fn to receive a snapshot after every transition.
func (r *Router) OnChange(fn func(State)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// State returns a snapshot of the current state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Close stops pending timers and in-flight searches.
func (r *Router) Close() {
	r.mu.Lock()
	r.closed = true
	stop(r.searchTimer)
	stop(r.blurTimer)
	for id, t := range r.notices {
		stop(t)
		delete(r.notices, id)
	}
	r.mu.Unlock()
	r.cancel()
}

// Start restores the theme, loads navigation and routes to fragment, or to
// the welcome screen when fragment is empty.
func (r *Router) Start(ctx context.Context, fragment string) {
	theme := render.ThemeDark
	if v, ok := r.storage.Get(themeKey); ok && render.Theme(v) == render.ThemeLight {
		theme = render.ThemeLight
	}

	r.update(func(s *State) {
		s.Theme = theme
		s.Loading = true
	})
	nav, err := r.backend.Navigation(ctx)
	r.update(func(s *State) {
		s.Loading = false
		if err != nil {
			r.log.Error("navigation failed", "error", err)
			s.Navigation = doctree.Forest{}
			r.addNoticeLocked(s, MsgNavigationFailed)
			return
		}
		s.Navigation = nav
	})

	if p := cleanFragment(fragment); p != "" {
		if err := r.NavigateToDoc(ctx, p); err == nil {
			return
		}
	}
	r.update(func(s *State) {
		r.showWelcomeLocked(s)
		r.history.push("")
	})
}

// NavigateToDoc loads and shows the document at path. On failure the current
// view is kept and a notice is raised; nothing is retried.
func (r *Router) NavigateToDoc(ctx context.Context, path string) error {
	return r.navigate(ctx, cleanFragment(path), (*history).push)
}

// navigate loads path and, once it is shown, lets commit record it in the
// history. Nothing is committed when the load fails or is superseded.
func (r *Router) navigate(ctx context.Context, path string, commit func(*history, string)) error {
	var seq int
	r.update(func(s *State) {
		r.navSeq++
		seq = r.navSeq
		s.Loading = true
	})

	doc, err := r.backend.Document(ctx, path)
	if err == nil {
		var content string
		content, err = render.Postprocess(doc.Content, render.LinkFragment)
		if err == nil {
			d := *doc
			d.Content = content
			doc = &d
		}
	}

	r.update(func(s *State) {
		if seq != r.navSeq {
			return
		}
		s.Loading = false
		if err != nil {
			r.log.Warn("document load failed", "path", path, "error", err)
			r.addNoticeLocked(s, MsgDocumentFailed)
			return
		}
		commit(&r.history, doc.Path)
		s.View = ViewDocument
		s.Document = doc
		s.CurrentPath = doc.Path
		s.Breadcrumb = doctree.Breadcrumb(doc.Path)
		s.Prev, s.Next = s.Navigation.Neighbors(doc.Path)
		s.ActiveCategory = doctree.CategoryOf(doc.Path)
		delete(s.Collapsed, s.ActiveCategory)
		if s.ViewportWidth <= Breakpoint {
			s.SidebarOpen = false
		}
	})
	return err
}

// NavigateToCategory marks the category active and opens its first document
// in depth-first order. It does nothing more when the category has none.
func (r *Router) NavigateToCategory(ctx context.Context, name string) error {
	var first *doctree.Node
	r.update(func(s *State) {
		s.ActiveCategory = name
		first = doctree.FirstFile(s.Navigation.Category(name))
	})
	if first == nil {
		return nil
	}
	return r.navigate(ctx, first.Path, (*history).push)
}

// ShowWelcome returns to the welcome screen and records it in history.
func (r *Router) ShowWelcome() {
	r.update(func(s *State) {
		r.showWelcomeLocked(s)
		r.history.push("")
	})
}

func (r *Router) showWelcomeLocked(s *State) {
	s.View = ViewWelcome
	s.CurrentPath = ""
	s.ActiveCategory = ""
	s.Document = nil
	s.Breadcrumb = nil
	s.Prev, s.Next = nil, nil
}

// Back restores the previous history entry without adding a new one.
func (r *Router) Back(ctx context.Context) error {
	return r.step(ctx, -1)
}

// Forward restores the next history entry without adding a new one.
func (r *Router) Forward(ctx context.Context) error {
	return r.step(ctx, 1)
}

// step restores the entry delta away. The history position only moves once
// the entry is showing, so a failed load leaves Back and Forward as they were.
func (r *Router) step(ctx context.Context, delta int) error {
	r.mu.Lock()
	i, path, ok := r.history.peek(delta)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if path == "" {
		r.update(func(s *State) {
			r.showWelcomeLocked(s)
			r.history.seek(i, path)
		})
		return nil
	}
	return r.navigate(ctx, path, func(h *history, _ string) { h.seek(i, path) })
}

// CanGoBack reports whether Back would change the view.
func (r *Router) CanGoBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.canBack()
}

// CanGoForward reports whether Forward would change the view.
func (r *Router) CanGoForward() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.canForward()
}

// SearchInput records a keystroke. Queries shorter than two characters
// clear and hide results immediately; longer ones are searched once typing
// pauses. A response for an older query is discarded.
func (r *Router) SearchInput(query string) {
	q := strings.TrimSpace(query)
	r.update(func(s *State) {
		stop(r.searchTimer)
		r.searchTimer = nil
		r.searchSeq++
		s.SearchQuery = q
		if utf8.RuneCountInString(q) < minQueryLen {
			s.SearchResults = nil
			s.SearchOpen = false
			return
		}
		seq := r.searchSeq
		r.searchTimer = r.afterFunc(r.debounce, func() { r.runSearch(q, seq) })
	})
}

func (r *Router) runSearch(q string, seq int) {
	r.mu.Lock()
	current := seq == r.searchSeq && !r.closed
	r.mu.Unlock()
	if !current {
		return
	}

	hits, err := r.backend.Search(r.ctx, q)
	r.update(func(s *State) {
		if seq != r.searchSeq {
			return
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				r.log.Warn("search failed", "query", q, "error", err)
			}
			return
		}
		s.SearchResults = hits
		s.SearchOpen = true
	})
}

// SearchFocus reopens existing results and cancels a pending blur.
func (r *Router) SearchFocus() {
	r.update(func(s *State) {
		stop(r.blurTimer)
		r.blurTimer = nil
		if s.SearchResults != nil {
			s.SearchOpen = true
		}
	})
}

// SearchBlur hides results after a short grace period, leaving time for a
// click on a result to land.
func (r *Router) SearchBlur() {
	r.mu.Lock()
	stop(r.blurTimer)
	r.blurTimer = r.afterFunc(r.blurGrace, func() {
		r.update(func(s *State) { s.SearchOpen = false })
	})
	r.mu.Unlock()
}

// OpenResult hides the results and navigates to the hit's document.
func (r *Router) OpenResult(ctx context.Context, hit doctree.Hit) error {
	r.update(func(s *State) { s.SearchOpen = false })
	return r.NavigateToDoc(ctx, hit.File)
}

// Resize opens the sidebar on wide viewports and closes it on narrow ones.
func (r *Router) Resize(width int) {
	r.update(func(s *State) {
		s.ViewportWidth = width
		s.SidebarOpen = width > Breakpoint
	})
}

// ClickOutside closes the sidebar when a narrow viewport shows it over the
// content.
func (r *Router) ClickOutside() {
	r.update(func(s *State) {
		if s.ViewportWidth <= Breakpoint && s.SidebarOpen {
			s.SidebarOpen = false
		}
	})
}

func (r *Router) ToggleSidebar() {
	r.update(func(s *State) { s.SidebarOpen = !s.SidebarOpen })
}

func (r *Router) ToggleCategory(name string) {
	r.update(func(s *State) {
		if s.Collapsed[name] {
			delete(s.Collapsed, name)
		} else {
			s.Collapsed[name] = true
		}
	})
}

// ToggleTheme flips between light and dark and persists the choice.
func (r *Router) ToggleTheme() error {
	var theme render.Theme
	r.update(func(s *State) {
		if s.Theme == render.ThemeLight {
			s.Theme = render.ThemeDark
		} else {
			s.Theme = render.ThemeLight
		}
		theme = s.Theme
	})
	return r.storage.Set(themeKey, string(theme))
}

// HighlightStyle names the code highlighting style matching the theme.
func (r *Router) HighlightStyle() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return render.StyleName(r.state.Theme)
}

// DismissNotice removes a notice before it expires.
func (r *Router) DismissNotice(id int) {
	r.update(func(s *State) {
		stop(r.notices[id])
		delete(r.notices, id)
		removeNotice(s, id)
	})
}

func (r *Router) addNoticeLocked(s *State, msg string) {
	r.noticeSeq++
	id := r.noticeSeq
	s.Notices = append(s.Notices, Notice{ID: id, Message: msg})
	if r.closed {
		return
	}
	r.notices[id] = r.afterFunc(r.noticeTTL, func() {
		r.mu.Lock()
		_, live := r.notices[id]
		delete(r.notices, id)
		r.mu.Unlock()
		if live {
			r.update(func(s *State) { removeNotice(s, id) })
		}
	})
}

func removeNotice(s *State, id int) {
	for i, n := range s.Notices {
		if n.ID == id {
			s.Notices = append(s.Notices[:i:i], s.Notices[i+1:]...)
			return
		}
	}
}

// update applies fn under the lock, then notifies listeners with a snapshot.
func (r *Router) update(fn func(*State)) {
	r.mu.Lock()
	fn(&r.state)
	snap := r.state.clone()
	listeners := append(([]func(State))(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}

// cleanFragment turns "#/guide/install" or "/guide/install/" into
// "guide/install".
func cleanFragment(f string) string {
	return strings.Trim(strings.TrimPrefix(f, "#"), "/")
}
