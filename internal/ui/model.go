// Package ui is the terminal browser: session list on the left, rendered
// transcript on the right.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"agentview/internal/config"
	"agentview/internal/export"
	"agentview/internal/logview"
	"agentview/internal/search"
)

const glamourStyle = "dark"

type Model struct {
	cfg      config.AppConfig
	idx      *search.Index
	exporter *export.Exporter

	list     list.Model
	viewport viewport.Model
	search   textinput.Model
	help     help.Model
	spinner  spinner.Model
	keys     keyMap

	width  int
	height int

	searchMode  bool
	searchQuery string
	focusOnList bool
	indexing    bool

	selectedFile string
	summaries    map[string]logview.Summary
	rendered     map[string]string
	matchLines   []int
	matchIndex   int

	status string
	err    error
}

type sessionsMsg struct{ sessions []logview.Summary }
type transcriptMsg struct {
	file     string
	rendered string
	err      error
}
type indexDoneMsg struct{ err error }
type searchMsg struct {
	query string
	hits  []search.Hit
	err   error
}
type exportMsg struct {
	path string
	err  error
}

type sessionItem struct{ s logview.Summary }

func (i sessionItem) Title() string {
	return shorten(i.s.ID, 28)
}

func (i sessionItem) Description() string {
	meta := fmt.Sprintf("last %s | %d msgs", shorten(i.s.LastActivity, 19), i.s.MessageCount)
	if i.s.Model != "" {
		meta += " | " + i.s.Model
	}
	return meta
}

func (i sessionItem) FilterValue() string {
	return strings.ToLower(i.s.ID + " " + i.s.File + " " + i.s.Model)
}

func NewModel(cfg config.AppConfig, idx *search.Index, exporter *export.Exporter) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 40, 20)
	l.Title = "Sessions"
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	vp := viewport.New(60, 20)
	vp.SetContent("Loading sessions...")

	ti := textinput.New()
	ti.Placeholder = "Search across sessions..."
	ti.Prompt = "/ "
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Points

	return Model{
		cfg:         cfg,
		idx:         idx,
		exporter:    exporter,
		list:        l,
		viewport:    vp,
		search:      ti,
		help:        help.New(),
		spinner:     sp,
		keys:        defaultKeys(),
		focusOnList: true,
		indexing:    idx != nil,
		summaries:   make(map[string]logview.Summary),
		rendered:    make(map[string]string),
		matchIndex:  -1,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadSessionsCmd()}
	if m.idx != nil {
		cmds = append(cmds, m.rebuildIndexCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) loadSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		return sessionsMsg{sessions: logview.Sessions(m.cfg.LogsDir, m.cfg.MaxSessions)}
	}
}

func (m Model) rebuildIndexCmd() tea.Cmd {
	return func() tea.Msg {
		files := logview.ListSessionFiles(m.cfg.LogsDir)
		return indexDoneMsg{err: m.idx.Rebuild(context.Background(), files)}
	}
}

func (m Model) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		hits, err := m.idx.Search(query, m.cfg.MaxSessions)
		return searchMsg{query: query, hits: hits, err: err}
	}
}

func (m Model) renderCmd(file string, width int) tea.Cmd {
	return func() tea.Msg {
		summary, ok := logview.Session(m.cfg.LogsDir, file)
		if !ok {
			return transcriptMsg{file: file, err: fmt.Errorf("session %s not found", file)}
		}
		entries, _ := logview.Transcript(m.cfg.LogsDir, file)
		md := export.BuildSessionMarkdown(summary, entries)

		rendered := md
		if r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle),
			glamour.WithWordWrap(width),
		); err == nil {
			if out, err := r.Render(md); err == nil {
				rendered = out
			}
		}
		return transcriptMsg{file: file, rendered: rendered}
	}
}

func (m Model) exportCmd(file string) tea.Cmd {
	return func() tea.Msg {
		summary, ok := logview.Session(m.cfg.LogsDir, file)
		if !ok {
			return exportMsg{err: fmt.Errorf("session %s not found", file)}
		}
		entries, _ := logview.Transcript(m.cfg.LogsDir, file)
		path, err := m.exporter.Export(summary, entries)
		return exportMsg{path: path, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		// Rendered transcripts are wrapped to the old width.
		m.rendered = make(map[string]string)
		if m.selectedFile != "" {
			cmds = append(cmds, m.renderCmd(m.selectedFile, m.wrapWidth()))
		}

	case sessionsMsg:
		m.applySessions(msg.sessions)
		if m.selectedFile != "" {
			cmds = append(cmds, m.renderCmd(m.selectedFile, m.wrapWidth()))
		}

	case indexDoneMsg:
		m.indexing = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "Index rebuild failed"
		} else {
			m.status = "Search index ready"
		}

	case searchMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Search failed"
			break
		}
		m.applySearchHits(msg.query, msg.hits)

	case transcriptMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Transcript load failed"
			break
		}
		m.rendered[msg.file] = msg.rendered
		if m.selectedFile == msg.file {
			m.showRendered(msg.rendered, true)
		}

	case exportMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported: " + msg.path
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.indexing {
		var spin tea.Cmd
		m.spinner, spin = m.spinner.Update(msg)
		cmds = append(cmds, spin)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.searchMode {
		switch msg.String() {
		case "esc":
			m.searchMode = false
			m.searchQuery = ""
			m.search.SetValue("")
			m.search.Blur()
			return m, m.loadSessionsCmd()
		case "enter":
			m.searchMode = false
			m.search.Blur()
			m.searchQuery = strings.TrimSpace(m.search.Value())
			if m.searchQuery == "" {
				return m, m.loadSessionsCmd()
			}
			if m.idx == nil {
				m.status = "Search index disabled"
				return m, nil
			}
			return m, m.searchCmd(m.searchQuery)
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.search.SetValue(m.searchQuery)
		m.search.CursorEnd()
		m.search.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.focusOnList = !m.focusOnList
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		cmds = append(cmds, m.loadSessionsCmd())
		if m.idx != nil {
			m.indexing = true
			cmds = append(cmds, m.rebuildIndexCmd(), m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Export):
		if m.selectedFile != "" {
			return m, m.exportCmd(m.selectedFile)
		}
		return m, nil
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpToMatch(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpToMatch(-1)
		return m, nil
	}

	if m.focusOnList {
		prev := m.selectedFile
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		m.selectedFile = m.currentSelectedFile()
		if m.selectedFile != prev && m.selectedFile != "" {
			if cached, ok := m.rendered[m.selectedFile]; ok {
				m.showRendered(cached, true)
			} else {
				m.viewport.SetContent("Rendering transcript...")
				cmds = append(cmds, m.renderCmd(m.selectedFile, m.wrapWidth()))
			}
		}
	} else {
		switch msg.String() {
		case "up", "k":
			m.viewport.LineUp(1)
		case "down", "j":
			m.viewport.LineDown(1)
		case "pgup", "b":
			m.viewport.HalfViewUp()
		case "pgdown", "f":
			m.viewport.HalfViewDown()
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applySessions(sessions []logview.Summary) {
	items := make([]list.Item, 0, len(sessions))
	m.summaries = make(map[string]logview.Summary, len(sessions))
	for _, s := range sessions {
		m.summaries[s.File] = s
		items = append(items, sessionItem{s: s})
	}
	m.list.SetItems(items)

	if len(sessions) == 0 {
		m.selectedFile = ""
		m.viewport.SetContent("No session logs found under " + m.cfg.LogsDir)
		return
	}

	selectIdx := 0
	for i, s := range sessions {
		if s.File == m.selectedFile {
			selectIdx = i
			break
		}
	}
	m.list.Select(selectIdx)
	m.selectedFile = sessions[selectIdx].File
}

func (m *Model) applySearchHits(query string, hits []search.Hit) {
	if len(hits) == 0 {
		m.list.SetItems(nil)
		m.selectedFile = ""
		m.viewport.SetContent("No sessions matched: " + query)
		m.status = "0 matches"
		return
	}
	// Re-summarize hits in rank order; the index stores only references.
	sessions := make([]logview.Summary, 0, len(hits))
	for _, hit := range hits {
		if s, ok := logview.Session(m.cfg.LogsDir, hit.File); ok {
			sessions = append(sessions, s)
		}
	}
	m.applySessions(sessions)
	m.status = fmt.Sprintf("%d sessions match", len(sessions))
}

func (m *Model) currentSelectedFile() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return ""
	}
	return item.s.File
}

func (m *Model) showRendered(rendered string, gotoTop bool) {
	content := rendered
	m.clearMatches()
	if q := strings.TrimSpace(m.searchQuery); q != "" {
		res := highlightMatches(rendered, q, func(s string) string {
			return matchStyle.Render(s)
		})
		content = res.Text
		m.matchLines = res.Lines
		if len(m.matchLines) > 0 {
			m.matchIndex = 0
		}
	}
	m.viewport.SetContent(content)
	if gotoTop {
		m.viewport.GotoTop()
		if len(m.matchLines) > 0 {
			m.viewport.SetYOffset(m.clampOffset(m.matchLines[0]))
		}
	}
}

func (m *Model) clearMatches() {
	m.matchLines = nil
	m.matchIndex = -1
}

func (m *Model) jumpToMatch(delta int) {
	if len(m.matchLines) == 0 {
		return
	}
	m.matchIndex = (m.matchIndex + delta + len(m.matchLines)) % len(m.matchLines)
	m.viewport.SetYOffset(m.clampOffset(m.matchLines[m.matchIndex]))
	m.status = fmt.Sprintf("Match %d/%d", m.matchIndex+1, len(m.matchLines))
}

func (m *Model) clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	max := m.viewport.TotalLineCount() - m.viewport.Height
	if max < 0 {
		max = 0
	}
	if offset > max {
		return max
	}
	return offset
}

func (m *Model) wrapWidth() int {
	w := m.viewport.Width - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	left, right := m.paneWidths()
	body := m.height - 2
	if body < 8 {
		body = 8
	}
	m.list.SetSize(left-2, body-2)
	m.viewport.Width = right - 2
	m.viewport.Height = body - 2
}

func (m *Model) paneWidths() (int, int) {
	left := m.width / 3
	if left < 30 {
		left = 30
	}
	if left > m.width-30 {
		left = m.width - 30
	}
	if left < 20 {
		left = 20
	}
	right := m.width - left - 1
	if right < 20 {
		right = 20
	}
	return left, right
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	left, right := m.paneWidths()
	leftPane := paneStyle(m.focusOnList).Width(left).Height(m.height - 2).Render(m.list.View())
	rightPane := paneStyle(!m.focusOnList).Width(right).Height(m.height - 2).Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	helpView := m.help.View(m.keys)
	if m.searchMode {
		helpView = m.search.View() + "  " + helpView
	} else if m.searchQuery != "" {
		helpView = "search: " + m.searchQuery + "  " + helpView
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.statusLine(), body, helpView)
}

func (m Model) statusLine() string {
	status := ""
	if m.indexing {
		status = m.spinner.View() + " indexing..."
	}
	if m.selectedFile != "" {
		s := m.summaries[m.selectedFile]
		status = fmt.Sprintf("session=%s  messages=%d  tokens=%d  last=%s",
			shorten(s.ID, 18), s.MessageCount, s.Tokens.Total, shorten(s.LastActivity, 19))
	}
	if len(m.matchLines) > 0 {
		status += fmt.Sprintf("  [match %d/%d]", m.matchIndex+1, len(m.matchLines))
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + shorten(strings.TrimSpace(m.status), 80)
	}
	if m.err != nil {
		status += "  err=" + m.err.Error()
	}
	return statusStyle.Render(status)
}

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("220"))
)

func paneStyle(active bool) lipgloss.Style {
	color := lipgloss.Color("240")
	if active {
		color = lipgloss.Color("39")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true).
		BorderForeground(color).
		Padding(0, 1)
}

type keyMap struct {
	Tab       key.Binding
	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Export    key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle focus")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextMatch: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		PrevMatch: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev match")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export markdown")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Search, k.NextMatch, k.Export, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Search, k.NextMatch, k.PrevMatch},
		{k.Export, k.Refresh, k.Quit},
	}
}
