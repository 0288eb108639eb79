// Package tui is a terminal front end for the documentation browser. It
// draws router state and feeds key presses back as router transitions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/router"
	"github.com/dgallion1/docserve/internal/termdoc"
)

// cellWidth approximates the pixel width of a terminal cell so the router's
// viewport breakpoint applies to column counts.
const cellWidth = 8

const sidebarWidth = 28

type focusArea int

const (
	focusSidebar focusArea = iota
	focusContent
	focusSearch
)

type stateMsg struct{ state router.State }

// item is one visible sidebar row.
type item struct {
	node  *doctree.Node
	depth int
}

type Model struct {
	ctx    context.Context
	router *router.Router
	states chan router.State

	search   textinput.Model
	viewport viewport.Model
	help     help.Model

	state    router.State
	items    []item
	cursor   int
	hit      int
	focus    focusArea
	width    int
	height   int
	rendered string // cache key of the viewport content
}

// New wires a model to r. Router changes triggered by timers reach the
// program through a buffered channel that keeps only the newest snapshots.
func New(ctx context.Context, r *router.Router) *Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 200

	m := &Model{
		ctx:      ctx,
		router:   r,
		states:   make(chan router.State, 16),
		search:   ti,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		state:    r.State(),
	}
	r.OnChange(func(s router.State) {
		for {
			select {
			case m.states <- s:
				return
			default:
				select {
				case <-m.states:
				default:
				}
			}
		}
	})
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, r *router.Router, fragment string) error {
	r.Start(ctx, fragment)
	p := tea.NewProgram(New(ctx, r), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.states:
			return stateMsg{s}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// do runs a blocking router transition off the update loop.
func (m *Model) do(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		_ = fn(m.ctx)
		return stateMsg{m.router.State()}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.router.Resize(msg.Width * cellWidth)
		m.sync()
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.refresh()
		return m, m.waitForState()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && (m.focus != focusSearch || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.focus == focusContent {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.search.Blur()
		m.router.SearchBlur()
		m.focus = focusSidebar
		m.sync()
		return m, nil
	case key.Matches(msg, keys.Open):
		hits := m.state.SearchResults
		if !m.state.SearchOpen || len(hits) == 0 {
			return m, nil
		}
		hit := hits[min(m.hit, len(hits)-1)]
		m.search.Blur()
		m.focus = focusContent
		return m, m.do(func(ctx context.Context) error { return m.router.OpenResult(ctx, hit) })
	case msg.Type == tea.KeyUp:
		m.hit = max(m.hit-1, 0)
		return m, nil
	case msg.Type == tea.KeyDown:
		m.hit = min(m.hit+1, max(len(m.state.SearchResults)-1, 0))
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.hit = 0
		m.router.SearchInput(m.search.Value())
		m.sync()
	}
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Search):
		m.focus = focusSearch
		m.router.SearchFocus()
		m.sync()
		return m, m.search.Focus()
	case key.Matches(msg, keys.Focus):
		if m.focus == focusContent {
			m.focus = focusSidebar
		} else {
			m.focus = focusContent
		}
		return m, nil
	case key.Matches(msg, keys.Back):
		return m, m.do(m.router.Back)
	case key.Matches(msg, keys.Forward):
		return m, m.do(m.router.Forward)
	case key.Matches(msg, keys.Home):
		m.router.ShowWelcome()
		m.sync()
		return m, nil
	case key.Matches(msg, keys.Theme):
		m.router.ToggleTheme()
		m.sync()
		return m, nil
	case key.Matches(msg, keys.Sidebar):
		m.router.ToggleSidebar()
		m.sync()
		return m, nil
	case key.Matches(msg, keys.Prev):
		return m, m.openNode(m.state.Prev)
	case key.Matches(msg, keys.Next):
		return m, m.openNode(m.state.Next)
	case key.Matches(msg, keys.Cancel):
		m.router.ClickOutside()
		m.sync()
		return m, nil
	}

	if m.focus == focusContent {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.items)-1, 0))
	case key.Matches(msg, keys.Toggle):
		if it, ok := m.selected(); ok && it.node.IsDir() {
			m.router.ToggleCategory(it.node.Name)
			m.sync()
		}
	case key.Matches(msg, keys.Open):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if it.node.IsDir() {
			name := it.node.Name
			return m, m.do(func(ctx context.Context) error { return m.router.NavigateToCategory(ctx, name) })
		}
		return m, m.openNode(it.node)
	}
	return m, nil
}

func (m *Model) openNode(n *doctree.Node) tea.Cmd {
	if n == nil {
		return nil
	}
	path := n.Path
	return m.do(func(ctx context.Context) error { return m.router.NavigateToDoc(ctx, path) })
}

func (m *Model) selected() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return item{}, false
	}
	return m.items[m.cursor], true
}

// sync pulls the router state after a synchronous transition.
func (m *Model) sync() {
	m.state = m.router.State()
	m.refresh()
}

func (m *Model) refresh() {
	m.items = flatten(m.state)
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	m.layoutViewport()
}

// flatten lists the sidebar rows: top-level categories, the documents of
// expanded categories, and top-level documents.
func flatten(s router.State) []item {
	var items []item
	var add func(nodes []*doctree.Node, depth int)
	add = func(nodes []*doctree.Node, depth int) {
		for _, n := range nodes {
			items = append(items, item{node: n, depth: depth})
			if n.IsDir() && !(depth == 0 && s.IsCollapsed(n.Name)) {
				add(n.Children, depth+1)
			}
		}
	}
	add(s.Navigation, 0)
	return items
}

func (m *Model) contentWidth() int {
	w := m.width
	if m.state.SidebarOpen {
		w -= sidebarWidth + 1
	}
	return max(w-2, 20)
}

func (m *Model) layoutViewport() {
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = max(m.height-4, 1)

	id := fmt.Sprintf("%v|%s|%s|%d", m.state.View, m.state.CurrentPath, m.state.Theme, m.viewport.Width)
	if id == m.rendered {
		return
	}
	m.rendered = id
	m.viewport.SetContent(m.body())
	m.viewport.GotoTop()
}

func (m *Model) body() string {
	s := m.state
	if s.View != router.ViewDocument || s.Document == nil {
		return m.welcome()
	}
	r := termdoc.New(termdoc.WithTheme(s.Theme), termdoc.WithWidth(m.viewport.Width))
	out, _ := r.Render(s.Document.Content)

	var b strings.Builder
	b.WriteString(crumbStyle.Render(breadcrumbText(s.Breadcrumb)))
	b.WriteString("\n")
	b.WriteString(out)
	if s.Prev != nil {
		b.WriteString(navStyle.Render("← Previous: " + s.Prev.Name))
		b.WriteString("\n")
	}
	if s.Next != nil {
		b.WriteString(navStyle.Render("Next: " + s.Next.Name + " →"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) welcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Documentation"))
	b.WriteString("\n\n")
	for _, n := range m.state.Navigation {
		if !n.IsDir() {
			continue
		}
		count := len(doctree.Forest(n.Children).Files())
		fmt.Fprintf(&b, "  %s  %s\n", categoryStyle.Render(n.Name), dimStyle.Render(fmt.Sprintf("%d documents", count)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Select a category in the sidebar or press / to search."))
	return b.String()
}

func breadcrumbText(crumbs []doctree.Crumb) string {
	parts := []string{"Home"}
	for _, c := range crumbs {
		parts = append(parts, c.Label)
	}
	return strings.Join(parts, " > ")
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("docs"), " ", m.search.View())
	if m.state.Loading {
		header += dimStyle.Render("  loading…")
	}

	main := m.viewport.View()
	if m.state.SearchOpen {
		main = m.results()
	}
	main = paneStyle.Width(m.contentWidth()).Render(main)

	body := main
	if m.state.SidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), main)
	}

	footer := m.help.ShortHelpView(keys.help())
	for _, n := range m.state.Notices {
		footer = noticeStyle.Render(n.Message) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) sidebar() string {
	var b strings.Builder
	for i, it := range m.items {
		label := it.node.Name
		style := itemStyle
		switch {
		case it.node.IsDir() && it.depth == 0:
			marker := "▾ "
			if m.state.IsCollapsed(it.node.Name) {
				marker = "▸ "
			}
			label = marker + label
			style = categoryStyle
		case it.node.Path == m.state.CurrentPath:
			style = activeStyle
		}
		line := strings.Repeat("  ", it.depth) + label
		if i == m.cursor && m.focus == focusSidebar {
			style = cursorStyle
		}
		b.WriteString(style.Render(truncate(line, sidebarWidth-2)))
		b.WriteString("\n")
	}
	return sidebarStyle.Width(sidebarWidth).Height(max(m.height-4, 1)).Render(b.String())
}

func (m *Model) results() string {
	hits := m.state.SearchResults
	if len(hits) == 0 {
		return dimStyle.Render("No results found")
	}
	var b strings.Builder
	for i, h := range hits {
		line := fmt.Sprintf("%s (line %d)  %s", h.File, h.Line, h.Content)
		style := itemStyle
		if i == m.hit {
			style = cursorStyle
		}
		b.WriteString(style.Render(truncate(line, m.contentWidth())))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return string(r[:width-1]) + "…"
}
