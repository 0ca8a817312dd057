// Package tui renders a watch session as a terminal dashboard.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"network-quality/pkg/models"
	"network-quality/pkg/quality"
)

// measureMsg carries a completed measurement into the UI loop.
type measureMsg struct {
	result *quality.Result
	err    error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	staleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	tierStyles  = map[models.QualityTier]lipgloss.Style{
		models.TierOffline:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241")),
		models.TierPoor:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		models.TierFair:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		models.TierGood:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		models.TierExcellent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("48")),
	}
)

type model struct {
	watcher *quality.Watcher
	updates chan measureMsg
	spin    spinner.Model
	status  quality.WatchStatus
}

// Run builds a watcher through makeWatcher, wiring its completion callback
// into the UI loop, and blocks until the user quits.
func Run(makeWatcher func(onMeasure func(*quality.Result, error)) *quality.Watcher) error {
	updates := make(chan measureMsg, 8)
	w := makeWatcher(func(res *quality.Result, err error) {
		select {
		case updates <- measureMsg{result: res, err: err}:
		default:
		}
	})
	defer w.Close()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		watcher: w,
		updates: updates,
		spin:    sp,
		status:  w.Status(),
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func waitForMeasure(ch chan measureMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForMeasure(m.updates))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.watcher.Refresh()
			m.status = m.watcher.Status()
		}
	case measureMsg:
		m.status = m.watcher.Status()
		return m, waitForMeasure(m.updates)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	s := titleStyle.Render("network quality") + "\n\n"

	switch {
	case m.status.IsMeasuring:
		s += fmt.Sprintf("  %s measuring...\n\n", m.spin.View())
	case m.status.State == quality.StateFailed:
		s += "  " + errStyle.Render("measurement failed") + "\n\n"
	default:
		s += "\n\n"
	}

	if m.status.Tier != nil {
		s += "  " + labelStyle.Render("tier") + tierStyles[*m.status.Tier].Render(m.status.Tier.String()) + "\n"
	} else {
		s += "  " + labelStyle.Render("tier") + staleStyle.Render("—") + "\n"
	}

	if rec := m.status.Record; rec != nil {
		s += "  " + labelStyle.Render("link") + string(rec.LinkType) + "\n"
		s += "  " + labelStyle.Render("latency") + fmtFloat(rec.LatencyMs, "ms") + "\n"
		s += "  " + labelStyle.Render("jitter") + fmtFloat(rec.JitterMs, "ms") + "\n"
		s += "  " + labelStyle.Render("downlink") + fmtFloat(rec.DownlinkMbps, "Mbps") + "\n"
		s += "  " + labelStyle.Render("packet loss") + fmtFloat(rec.PacketLossPercent, "%") + "\n"
		if rec.WifiSignalDBM != nil {
			s += "  " + labelStyle.Render("wifi signal") + fmt.Sprintf("%d dBm", *rec.WifiSignalDBM) + "\n"
		}
		if rec.FailureReason != "" {
			s += "  " + labelStyle.Render("note") + staleStyle.Render(rec.FailureReason) + "\n"
		}
	}

	if m.status.Err != nil {
		s += "\n  " + errStyle.Render(m.status.Err.Error()) + "\n"
	}
	if !m.status.LastMeasuredAt.IsZero() {
		s += "\n  " + staleStyle.Render("measured "+m.status.LastMeasuredAt.Format("15:04:05")) + "\n"
	}

	s += "\n" + helpStyle.Render("  r refresh • q quit") + "\n"
	return s
}

func fmtFloat(v *float64, unit string) string {
	if v == nil {
		return staleStyle.Render("—")
	}
	return fmt.Sprintf("%.1f %s", *v, unit)
}
