package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/history"
	"github.com/tessro/mewzy/internal/lyrics"
	"github.com/tessro/mewzy/internal/mediakeys"
	"github.com/tessro/mewzy/internal/player"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/tui/components"
	"github.com/tessro/mewzy/internal/tui/styles"
	"github.com/tessro/mewzy/internal/visualizer"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelLibrary
	PanelHistory
	panelCount
)

const (
	frameInterval  = 50 * time.Millisecond
	noticeLifetime = 3 * time.Second
	fetchTimeout   = 10 * time.Second
	volumeStep     = 0.05
)

// Options configures an App.
type Options struct {
	Engine  *player.Engine
	Recent  *history.Recent
	API     *api.Client
	Notices <-chan core.Notice
	// Surface receives now-playing metadata for the status line.
	Surface *mediakeys.StatusSurface
	Refresh time.Duration
	Bars    int
	Theme   string
	// Restore loads the previous session on start.
	Restore bool
}

// App holds the TUI application dependencies
type App struct {
	engine  *player.Engine
	recent  *history.Recent
	api     *api.Client
	notices <-chan core.Notice
	surface *mediakeys.StatusSurface
	feed    *visualizer.Feed
	view    *viewState
	refresh time.Duration
	bars    int
	restore bool
}

// NewApp creates a new TUI application
func NewApp(opts Options) *App {
	if opts.Refresh <= 0 {
		opts.Refresh = 250 * time.Millisecond
	}
	styles.SetTheme(opts.Theme)

	a := &App{
		engine:  opts.Engine,
		recent:  opts.Recent,
		api:     opts.API,
		notices: opts.Notices,
		surface: opts.Surface,
		view:    &viewState{},
		refresh: opts.Refresh,
		bars:    visualizer.ClampBars(opts.Bars),
		restore: opts.Restore,
	}
	a.feed = visualizer.NewFeed(opts.Engine.Session(), func() bool {
		return a.view.Expanded() && a.engine.State().Playing
	})
	return a
}

// viewState is shared with the keyboard dispatcher and the visualizer
// goroutine.
type viewState struct {
	mu       sync.Mutex
	expanded bool
	typing   bool
}

func (v *viewState) ToggleExpanded() {
	v.mu.Lock()
	v.expanded = !v.expanded
	v.mu.Unlock()
}

func (v *viewState) Collapse() {
	v.mu.Lock()
	v.expanded = false
	v.mu.Unlock()
}

func (v *viewState) Expanded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded
}

func (v *viewState) Typing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.typing
}

func (v *viewState) setTyping(on bool) {
	v.mu.Lock()
	v.typing = on
	v.mu.Unlock()
}

// Model is the main TUI model
type Model struct {
	app          *App
	keys         *mediakeys.Dispatcher
	width        int
	height       int
	focusedPanel Panel

	// State
	state        core.PlaybackState
	library      []core.Track
	libraryTitle string
	recent       []store.RecentItem
	bars         []float64

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	libraryView *components.Library
	historyView *components.History
	lyricsView  *components.Lyrics

	// Overlays
	showHelp bool

	// Lyrics
	showLyrics    bool
	lyricsFor     string
	lyricsDoc     lyrics.Lyrics
	lyricsLoading bool

	// Play-by-id prompt
	showPrompt bool
	prompt     textinput.Model

	// Toasts and errors
	notice       *core.Notice
	noticeExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Track id"
	ti.CharLimit = 64
	ti.Width = 40

	return Model{
		app:          app,
		keys:         mediakeys.NewDispatcher(app.engine, app.view, app.view.Typing),
		focusedPanel: PanelLibrary,
		libraryTitle: "Feed",
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		libraryView:  components.NewLibrary(),
		historyView:  components.NewHistory(),
		lyricsView:   components.NewLyrics(),
		prompt:       ti,
	}
}

// Messages
type tickMsg time.Time
type framesMsg []float64
type noticeMsg core.Notice
type recentChangedMsg struct{}
type refreshMsg struct{}
type errMsg error

type libraryMsg struct {
	title  string
	tracks []core.Track
}

type recentMsg []store.RecentItem

type lyricsMsg struct {
	trackID string
	doc     lyrics.Lyrics
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitNotice() tea.Cmd {
	ch := m.app.notices
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m Model) restore() tea.Cmd {
	if !m.app.restore {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := m.app.engine.Restore(ctx); err != nil {
			return errMsg(fmt.Errorf("could not restore last session: %w", err))
		}
		return refreshMsg{}
	}
}

func (m Model) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if m.app.api.HasToken() {
			if likes, err := m.app.api.Likes(ctx); err == nil && len(likes) > 0 {
				return libraryMsg{title: "Liked Songs", tracks: likes}
			}
		}
		feed, err := m.app.api.Feed(ctx)
		if err != nil {
			return errMsg(fmt.Errorf("could not load feed: %w", err))
		}
		return libraryMsg{title: "Feed", tracks: feed}
	}
}

func (m Model) fetchRecent() tea.Cmd {
	return func() tea.Msg {
		items, err := m.app.recent.List(context.Background())
		if err != nil {
			return errMsg(err)
		}
		return recentMsg(items)
	}
}

func (m Model) fetchLyrics(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return lyricsMsg{trackID: id, doc: lyrics.Load(ctx, m.app.api, id)}
	}
}

// action runs fn off the UI goroutine and refreshes afterwards.
func (m Model) action(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(context.Background())
		return refreshMsg{}
	}
}

func (m Model) playTrack(track core.Track, source []core.Track) tea.Cmd {
	return m.action(func(ctx context.Context) {
		m.app.engine.PlayFrom(ctx, track, source, false)
	})
}

func (m Model) copyLink() tea.Cmd {
	track := m.state.Track
	return func() tea.Msg {
		if track == nil {
			return nil
		}
		if err := clipboard.WriteAll(track.StreamURL); err != nil {
			return errMsg(fmt.Errorf("could not copy link: %w", err))
		}
		return noticeMsg(core.NewNotice(core.NoticeSuccess, "Link copied"))
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitNotice(),
		m.restore(),
		m.fetchLibrary(),
		m.fetchRecent(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m.refreshState(m.tick())

	case refreshMsg:
		return m.refreshState(nil)

	case framesMsg:
		m.bars = msg
		return m, nil

	case noticeMsg:
		n := core.Notice(msg)
		m.notice = &n
		m.noticeExpiry = time.Now().Add(noticeLifetime)
		return m, m.waitNotice()

	case errMsg:
		n := core.NewNotice(core.NoticeError, msg.Error())
		m.notice = &n
		m.noticeExpiry = time.Now().Add(noticeLifetime)
		return m, nil

	case libraryMsg:
		m.libraryTitle = msg.title
		m.library = msg.tracks
		return m, nil

	case recentMsg:
		m.recent = msg
		return m, nil

	case recentChangedMsg:
		return m, m.fetchRecent()

	case lyricsMsg:
		if m.currentID() == msg.trackID {
			m.lyricsDoc = msg.doc
			m.lyricsLoading = false
		}
		return m, nil
	}

	// Forward other messages to the prompt while it is open
	if m.showPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) refreshState(next tea.Cmd) (tea.Model, tea.Cmd) {
	if m.notice != nil && time.Now().After(m.noticeExpiry) {
		m.notice = nil
	}
	oldTrack := m.currentID()
	m.state = m.app.engine.State()

	var cmds []tea.Cmd
	if next != nil {
		cmds = append(cmds, next)
	}
	if id := m.currentID(); id != oldTrack && id != "" && m.showLyrics {
		m.lyricsFor = id
		m.lyricsLoading = true
		cmds = append(cmds, m.fetchLyrics(id))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) currentID() string {
	if m.state.Track == nil {
		return ""
	}
	return m.state.Track.ID
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys (always work)
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if key == "?" || key == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Play-by-id prompt
	if m.showPrompt {
		return m.handlePromptKeyPress(msg)
	}

	// Normal mode
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showPrompt = true
		m.app.view.setTyping(true)
		m.prompt.SetValue("")
		m.prompt.Focus()
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil

	case "ctrl+l", "L":
		m.showLyrics = !m.showLyrics
		if m.showLyrics && m.currentID() != "" && m.currentID() != m.lyricsFor {
			m.lyricsFor = m.currentID()
			m.lyricsLoading = true
			return m, m.fetchLyrics(m.lyricsFor)
		}
		return m, nil

	case "esc":
		if m.showLyrics {
			m.showLyrics = false
			return m, nil
		}
	}

	if model, cmd, ok := m.handlePanelKeyPress(key); ok {
		return model, cmd
	}

	// Playback extras
	engine := m.app.engine
	switch key {
	case "n":
		return m, m.action(engine.Next)
	case "p":
		return m, m.action(engine.Previous)
	case "+", "=":
		return m, m.action(func(context.Context) { engine.AdjustVolume(volumeStep) })
	case "-":
		return m, m.action(func(context.Context) { engine.AdjustVolume(-volumeStep) })
	case "r":
		return m, m.action(func(context.Context) { engine.CycleRepeat() })
	case "s":
		return m, m.action(func(context.Context) { engine.SetShuffle(!m.state.Settings.Shuffle) })
	case "y":
		return m, m.copyLink()
	case "R":
		return m, tea.Batch(m.fetchLibrary(), m.fetchRecent())
	}

	// Shared transport keys (space, arrows, seek, volume, mute, expand).
	// They may block on the network, so run them as a command.
	keys := m.keys
	return m, m.action(func(ctx context.Context) { keys.Handle(ctx, key) })
}

func (m Model) handlePanelKeyPress(key string) (tea.Model, tea.Cmd, bool) {
	var cursor interface {
		SelectNext()
		SelectPrev()
	}
	switch m.focusedPanel {
	case PanelQueue:
		cursor = m.queueView
	case PanelLibrary:
		cursor = m.libraryView
	case PanelHistory:
		cursor = m.historyView
	default:
		return m, nil, false
	}

	switch key {
	case "ctrl+n", "pgdown":
		cursor.SelectNext()
		return m, nil, true
	case "ctrl+p", "pgup":
		cursor.SelectPrev()
		return m, nil, true
	}

	switch m.focusedPanel {
	case PanelQueue:
		i := m.queueView.Selected(len(m.state.Queue))
		if key == "enter" && i >= 0 {
			return m, m.action(func(ctx context.Context) { m.app.engine.PlayIndex(ctx, i) }), true
		}

	case PanelLibrary:
		i := m.libraryView.Selected(len(m.library))
		if i < 0 {
			break
		}
		switch key {
		case "enter":
			return m, m.playTrack(m.library[i], m.library), true
		case "a":
			track := m.library[i]
			return m, m.action(func(context.Context) { m.app.engine.Enqueue(track) }), true
		}

	case PanelHistory:
		i := m.historyView.Selected(len(m.recent))
		if i < 0 {
			break
		}
		item := m.recent[i]
		switch key {
		case "enter":
			return m, m.playTrack(item.Track, nil), true
		case "a":
			return m, m.action(func(context.Context) { m.app.engine.Enqueue(item.Track) }), true
		case "x", "delete":
			return m, func() tea.Msg {
				if err := m.app.recent.Remove(context.Background(), item.ID); err != nil {
					return errMsg(err)
				}
				return recentChangedMsg{}
			}, true
		}
	}
	return m, nil, false
}

func (m Model) handlePromptKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		id := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		if id == "" {
			return m, nil
		}
		track := core.Track{ID: id, Title: id, StreamURL: m.app.api.StreamURL(id)}
		return m, m.action(func(ctx context.Context) {
			m.app.engine.PlayFrom(ctx, track, nil, true)
		})
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.showPrompt = false
	m.prompt.Blur()
	m.app.view.setTyping(false)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showPrompt {
		return m.renderPrompt()
	}

	bodyHeight := m.height - 1
	statusBar := m.renderStatusBar()

	if m.showLyrics {
		active := m.lyricsDoc.ActiveIndex(m.state.Position, m.state.Duration)
		body := m.lyricsView.Render(m.lyricsDoc, active, m.lyricsLoading, m.width-2, bodyHeight-2)
		return lipgloss.JoinVertical(lipgloss.Left, body, statusBar)
	}

	if m.app.view.Expanded() {
		body := m.nowPlaying.Render(&m.state, m.bars, m.width-2, bodyHeight-2, true, true)
		return lipgloss.JoinVertical(lipgloss.Left, body, statusBar)
	}

	// Main layout: two columns
	// Left: Now Playing (top), Queue (bottom)
	// Right: Library (top), History (bottom)
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := bodyHeight * 40 / 100
	bottomHeight := bodyHeight - topHeight - 2

	nowPlaying := m.nowPlaying.Render(&m.state, nil, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying, false)
	queueView := m.queueView.Render(m.state.QueueView(), leftWidth-2, bottomHeight-2, m.focusedPanel == PanelQueue)
	libraryView := m.libraryView.Render(m.libraryTitle, m.library, m.currentID(), rightWidth-2, topHeight-2, m.focusedPanel == PanelLibrary)
	historyView := m.historyView.Render(m.recent, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, libraryView, historyView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:play id  space:play/pause  N/P:next/prev  ←/→:seek  f:expand  ctrl+l:lyrics  tab:switch panel")

	if m.notice != nil {
		status = styles.NoticeStyle(string(m.notice.Kind)).Render(m.notice.Message)
	} else if m.app.surface != nil {
		if meta, playing := m.app.surface.Snapshot(); meta.Title != "" {
			line := styles.StatusIcon(playing, false) + " " + meta.Title
			if meta.Artist != "" {
				line += styles.Muted.Render(" · " + meta.Artist)
			}
			status = line + "   " + status
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		MaxHeight(1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "mewzy - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Play a track by id
  Tab          Next panel
  Shift+Tab    Previous panel
  Ctrl+L       Toggle lyrics
  f / Esc      Expand / collapse player
  R            Reload library and history

  Playback
  ────────
  Space, k     Play/Pause
  N, n         Next track
  P, p         Previous track
  ←/→          Seek 5s
  j/l          Seek 10s
  0-9          Seek to 0%-90%
  ↑/↓          Volume (↑ unmutes)
  +/-          Fine volume
  m            Mute
  r            Cycle repeat
  s            Toggle shuffle
  y            Copy stream link

  Lists
  ─────
  Ctrl+N/PgDn  Move down
  Ctrl+P/PgUp  Move up
  Enter        Play selected
  a            Add to queue
  x            Remove from history

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderPrompt() string {
	var b strings.Builder
	b.WriteString(styles.Highlight.Render("Play by id"))
	b.WriteString("\n\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n\n")
	b.WriteString(styles.Dim.Render("Enter:play  Esc:close"))

	content := lipgloss.NewStyle().
		Width(50).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application and blocks until it exits
func Run(app *App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(NewModel(app), tea.WithAltScreen())

	go func() {
		for frame := range app.feed.Frames(ctx, app.bars, frameInterval) {
			p.Send(framesMsg(frame))
		}
	}()

	if app.recent != nil {
		unsubscribe := app.recent.Subscribe(func(ev history.Event) {
			if ev.Kind != history.TrackProgress {
				go p.Send(recentChangedMsg{})
			}
		})
		defer unsubscribe()
	}

	_, err := p.Run()
	return err
}
