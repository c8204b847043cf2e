package tui

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defence/internal/config"
	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/protocol"
	"github.com/vovakirdan/tui-defence/internal/session"
	"github.com/vovakirdan/tui-defence/internal/sim"
	"github.com/vovakirdan/tui-defence/internal/storage"
)

// Options configures the game shell.
type Options struct {
	Rules      config.Config
	Difficulty string
	Store      *storage.Store // nil disables result history
	Logger     *log.Logger
	Runtime    core.RuntimeConfig

	// ScreenshotDir defaults to ~/.towerdef/screenshots.
	ScreenshotDir string
}

// notificationMsg carries one engine notification into the Bubble Tea loop.
type notificationMsg struct {
	gen int
	n   protocol.Notification
}

// notificationsClosedMsg reports that a session's notification queue ended.
type notificationsClosedMsg struct {
	gen int
}

// sessionDoneMsg reports that both engines of a session have exited.
type sessionDoneMsg struct {
	gen     int
	outcome sim.Outcome
	err     error
}

// waitNotification blocks on the session's notification queue.
func waitNotification(s *session.Session, gen int) tea.Cmd {
	return func() tea.Msg {
		n, ok := s.NextNotification()
		if !ok {
			return notificationsClosedMsg{gen: gen}
		}
		return notificationMsg{gen: gen, n: n}
	}
}

// waitSession blocks until the session has shut down.
func waitSession(s *session.Session, gen int) tea.Cmd {
	return func() tea.Msg {
		outcome, err := s.Wait()
		return sessionDoneMsg{gen: gen, outcome: outcome, err: err}
	}
}

// sessionTracker remembers the live session so it can be torn down from
// outside the Bubble Tea loop (program exit, SSH disconnect).
type sessionTracker struct {
	mu      sync.Mutex
	current *session.Session
}

func (t *sessionTracker) set(s *session.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = s
}

func (t *sessionTracker) shutdown() {
	t.mu.Lock()
	s := t.current
	t.current = nil
	t.mu.Unlock()

	if s != nil {
		s.Stop()
		//nolint:errcheck // Aborted games are not reported
		s.Wait()
	}
}

// Model is the Bubble Tea model of one player's game.
type Model struct {
	opts    Options
	keys    GameKeyMap
	help    help.Model
	pixels  *pixelRenderer
	tracker *sessionTracker

	session *session.Session
	gen     int
	started time.Time

	// fb belongs to the render engine while inFlight is set, and after
	// GameOver until both engines have exited. Ticks that arrive meanwhile
	// are counted in pending and issued one per FrameReady.
	fb       *core.Framebuffer
	frame    string
	inFlight bool
	pending  int
	snapshot bool

	money  int64
	health float64
	wave   int

	placing bool
	gunType entity.GunType
	level   int

	over     *protocol.GameOver
	waiting  bool
	err      error
	notice   string
	showHelp bool
	quitting bool
}

// NewModel creates the game shell. The first game starts on the first tick.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Runtime.FrameRate > 0 {
		opts.Rules.Field.FrameRate = opts.Runtime.FrameRate
	}
	if opts.ScreenshotDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.ScreenshotDir = filepath.Join(home, ".towerdef", "screenshots")
		}
	}

	h := help.New()
	h.Width = opts.Runtime.ScreenW

	return Model{
		opts:    opts,
		keys:    DefaultGameKeyMap(),
		help:    h,
		pixels:  newPixelRenderer(),
		tracker: &sessionTracker{},
	}
}

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Rules.Field.FrameRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()

	case notificationMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleNotification(msg.n)

	case notificationsClosedMsg:
		if msg.gen != m.gen || m.waiting {
			return m, nil
		}
		m.waiting = true
		return m, waitSession(m.session, m.gen)

	case sessionDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleSessionDone(msg)
	}

	return m, nil
}

// active reports whether the current session accepts frames and purchases.
func (m Model) active() bool {
	return m.session != nil && m.over == nil && m.err == nil && !m.waiting
}

// startSession starts a fresh game and resets the shell state.
func (m *Model) startSession() tea.Cmd {
	seed := m.opts.Runtime.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m.gen++
	m.session = session.Start(session.Options{
		Rules:  m.opts.Rules,
		Seed:   seed,
		Logger: m.opts.Logger,
	})
	m.tracker.set(m.session)
	m.started = time.Now()

	m.fb = nil
	m.frame = ""
	m.inFlight = false
	m.pending = 0
	m.snapshot = false
	m.money = m.opts.Rules.Economy.InitialMoney
	m.health = m.opts.Rules.Tower.Health
	m.wave = 0
	m.placing = false
	m.over = nil
	m.waiting = false
	m.err = nil
	m.notice = ""

	m.opts.Logger.Info("game started", "seed", seed, "difficulty", m.opts.Difficulty)
	return waitNotification(m.session, m.gen)
}

// requestFrame hands the framebuffer to the render engine, reallocating it
// when the terminal size changed.
func (m *Model) requestFrame() {
	w, h := fieldSize(m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
	if m.fb == nil || m.fb.Width() != w || m.fb.Height() != h {
		m.fb = core.NewFramebuffer(w, h)
		m.session.Resize(w, h)
	}
	if m.session.RequestFrame(m.fb) {
		m.inFlight = true
	}
}

// handleTick issues exactly one frame per tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.opts.Rules.Field.FrameRate)}

	if m.session == nil && m.over == nil && m.err == nil {
		cmds = append(cmds, m.startSession())
	}

	if m.active() {
		if m.inFlight {
			m.pending++
		} else {
			m.requestFrame()
		}
	}

	return m, tea.Batch(cmds...)
}

// handleNotification applies one notification and keeps listening.
func (m Model) handleNotification(n protocol.Notification) (tea.Model, tea.Cmd) {
	next := waitNotification(m.session, m.gen)

	switch n := n.(type) {
	case protocol.FrameReady:
		m.inFlight = false
		m.frame = m.pixels.Render(n.FB)
		if m.snapshot {
			m.snapshot = false
			m.takeScreenshot(n.FB)
		}
		if m.pending > 0 && m.active() {
			m.pending--
			m.requestFrame()
		}

	case protocol.MoneyChanged:
		m.money = n.Money

	case protocol.TowerHealthChanged:
		m.health = n.Health

	case protocol.WaveStarted:
		m.wave = n.Wave
		m.opts.Logger.Debug("wave started", "wave", n.Wave, "monsters", n.Monsters)

	case protocol.GunPlaced:
		m.placing = false
		m.notice = fmt.Sprintf("placed %s L%d", n.Type, n.Level+1)

	case protocol.GameOver:
		over := n
		m.over = &over
		m.placing = false
		m.inFlight = true
		m.pending = 0
		m.session.Stop()
		m.waiting = true
		return m, waitSession(m.session, m.gen)
	}

	return m, next
}

// handleSessionDone records a finished game once both engines are gone.
func (m Model) handleSessionDone(msg sessionDoneMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.inFlight = false
	m.tracker.set(nil)

	if m.snapshot {
		m.snapshot = false
		if m.fb != nil {
			m.takeScreenshot(m.fb)
		}
	}

	if msg.err != nil {
		m.err = msg.err
		m.opts.Logger.Error("game failed", "err", msg.err)
		return m, nil
	}
	if m.over != nil {
		m.recordResult(*m.over)
	}
	m.opts.Logger.Info("game finished", "outcome", msg.outcome)
	return m, nil
}

// recordResult saves the finished game to the result history.
func (m *Model) recordResult(over protocol.GameOver) {
	if m.opts.Store == nil {
		return
	}
	_, err := m.opts.Store.SaveResult(storage.Result{
		Won:         over.Won,
		Wave:        over.Wave,
		TowerHealth: over.TowerHealth,
		Money:       over.Money,
		Duration:    time.Since(m.started),
		Difficulty:  m.opts.Difficulty,
	})
	if err != nil {
		m.opts.Logger.Warn("could not save result", "err", err)
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.session != nil {
			m.session.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Screenshot):
		switch {
		case m.inFlight || m.waiting:
			m.snapshot = true
		case m.fb != nil:
			m.takeScreenshot(m.fb)
		default:
			m.notice = "nothing to capture yet"
		}
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if (m.over != nil || m.err != nil) && !m.waiting {
			m.opts.Runtime.Seed = 0
			return m, m.startSession()
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.placing = false
		return m, nil

	case key.Matches(msg, m.keys.LevelUp):
		m.level = min(m.level+1, entity.NumLevels-1)
		return m, nil

	case key.Matches(msg, m.keys.LevelDown):
		m.level = max(m.level-1, 0)
		return m, nil
	}

	if t, ok := m.keys.gunForKey(msg); ok && m.active() {
		m.gunType = t
		m.placing = true
		m.notice = ""
	}
	return m, nil
}

// handleMouse places the selected gun where the player clicked.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if !m.placing || !m.active() || m.fb == nil {
		return m, nil
	}

	pos, ok := m.fieldPosition(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.session.PlaceGun(m.gunType, m.level, pos)
	return m, nil
}

// fieldPosition converts a terminal cell to a logical field position.
// Cells outside the field report false.
func (m Model) fieldPosition(col, row int) (core.Polar, bool) {
	w, h := m.fb.Width(), m.fb.Height()
	if col < 0 || col >= w || row < 0 || 2*row >= h {
		return core.Polar{}, false
	}
	scale := core.ScreenScale(w, h, m.opts.Rules.Field.VisibilityRadius)
	return core.ScreenToPolar(cellToPixel(col, row), scale, w, h), true
}

// takeScreenshot saves fb as PNG. fb must not be in flight.
func (m *Model) takeScreenshot(fb *core.Framebuffer) {
	path, err := writeScreenshot(m.opts.ScreenshotDir, fb, time.Now())
	if err != nil {
		m.notice = "screenshot failed"
		m.opts.Logger.Warn("could not save screenshot", "err", err)
		return
	}
	m.notice = "saved " + path
	m.opts.Logger.Info("screenshot saved", "path", path)
}

// writeScreenshot encodes fb into a timestamped PNG file under dir.
func writeScreenshot(dir string, fb *core.Framebuffer, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("screenshot: no directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("towerdef_%s.png", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, fb.Image()); err != nil {
		f.Close()
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// Shutdown stops the live game, if any, and waits for its engines.
func (m Model) Shutdown() {
	m.tracker.shutdown()
}

// Run starts the Bubble Tea program with a new game shell.
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.Shutdown()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
