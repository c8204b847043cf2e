package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-defence/internal/entity"
)

// GameKeyMap defines the key bindings of the game screen.
type GameKeyMap struct {
	Machine    key.Binding
	Laser      key.Binding
	Mine       key.Binding
	LevelUp    key.Binding
	LevelDown  key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Screenshot key.Binding
	Restart    key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Machine, k.Laser, k.Mine, k.LevelUp, k.LevelDown, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Machine, k.Laser, k.Mine},
		{k.LevelUp, k.LevelDown, k.Cancel},
		{k.Screenshot, k.Restart, k.Help, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Machine: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "machine gun"),
		),
		Laser: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "laser"),
		),
		Mine: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "mine"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "level up"),
		),
		LevelDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "level down"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel placing"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new game"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// gunForKey returns the gun type a shop key selects.
func (k GameKeyMap) gunForKey(msg tea.KeyMsg) (entity.GunType, bool) {
	switch {
	case key.Matches(msg, k.Machine):
		return entity.GunMachine, true
	case key.Matches(msg, k.Laser):
		return entity.GunLaser, true
	case key.Matches(msg, k.Mine):
		return entity.GunMine, true
	}
	return 0, false
}
