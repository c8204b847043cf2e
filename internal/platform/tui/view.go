package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-defence/internal/entity"
)

var (
	statusStyle   = lipgloss.NewStyle().Inline(true)
	moneyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	healthStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	waveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	shopStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	helpBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 3)
	wonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	lostStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// View renders the field, the status bar and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cols := max(m.opts.Runtime.ScreenW, 1)
	rows := max(m.opts.Runtime.ScreenH-statusLines, 1)

	var field string
	switch {
	case m.showHelp:
		field = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center,
			panelStyle.Render(m.help.View(m.keys)))
	case m.over != nil:
		field = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, m.gameOverPanel())
	case m.err != nil:
		field = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, m.errorPanel())
	case m.frame == "":
		field = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, dimStyle.Render("preparing the field..."))
	default:
		field = m.frame
	}

	help := m.help
	help.ShowAll = false
	return lipgloss.JoinVertical(lipgloss.Left,
		field,
		statusStyle.MaxWidth(cols).Render(m.statusBar()),
		helpBarStyle.Inline(true).MaxWidth(cols).Render(help.View(m.keys)),
	)
}

// statusBar shows the balance, the tower, the wave and the shop. Guns the
// player cannot afford at the selected level are dimmed.
func (m Model) statusBar() string {
	parts := []string{
		moneyStyle.Render(fmt.Sprintf("$%d", m.money)),
		healthStyle.Render(fmt.Sprintf("tower %.0f", m.health)),
		waveStyle.Render(fmt.Sprintf("wave %d/%d", m.wave, m.opts.Rules.Waves.Count)),
	}

	for t := 0; t < entity.NumGunTypes; t++ {
		gt := entity.GunType(t)
		price := entity.Price(gt, m.level)
		label := fmt.Sprintf("[%d] %s $%d", t+1, gt, price)

		style := shopStyle
		switch {
		case m.placing && gt == m.gunType:
			style = selectedStyle
		case price > m.money:
			style = dimStyle
		}
		parts = append(parts, style.Render(label))
	}

	parts = append(parts, fmt.Sprintf("L%d", m.level+1))
	if m.placing {
		parts = append(parts, noticeStyle.Render("click to place"))
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return strings.Join(parts, "  ")
}

func (m Model) gameOverPanel() string {
	title := lostStyle.Render("THE TOWER HAS FALLEN")
	if m.over.Won {
		title = wonStyle.Render("VICTORY")
	}

	body := fmt.Sprintf("wave %d of %d\ntower %.0f\nmoney $%d",
		m.over.Wave, m.opts.Rules.Waves.Count, m.over.TowerHealth, m.over.Money)
	if m.waiting {
		body += "\n\n" + dimStyle.Render("saving...")
	} else {
		body += "\n\n" + dimStyle.Render("r: new game  q: quit")
	}
	return panelStyle.Render(title + "\n\n" + body)
}

func (m Model) errorPanel() string {
	return panelStyle.Render(lostStyle.Render("GAME ABORTED") + "\n\n" +
		m.err.Error() + "\n\n" + dimStyle.Render("r: new game  q: quit"))
}
