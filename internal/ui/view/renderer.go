// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/impostor/internal/ui/common"
	"github.com/palemoky/impostor/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into OnlineModel.
func CreateViewRenderer() model.ViewRenderer {
	return func(m model.Model, phase model.GamePhase) string {
		var body string
		switch phase {
		case model.PhaseMenu:
			body = MenuView(m)
		case model.PhaseJoin:
			body = JoinView(m)
		case model.PhaseLobby:
			body = LobbyView(m)
		case model.PhaseClue:
			body = ClueView(m)
		case model.PhaseVoting:
			body = VotingView(m)
		case model.PhaseReveal:
			body = RevealView(m)
		default:
			return "Unknown phase"
		}
		return lipgloss.JoinVertical(lipgloss.Left, body, renderStatusBar(m))
	}
}

// renderStatusBar 底部通知与延迟
func renderStatusBar(m model.Model) string {
	var parts []string
	if n := m.GetCurrentNotification(); n != nil {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
		if n.Type == model.NotifyError {
			style = common.ErrorStyle
		}
		parts = append(parts, style.Render(n.Message))
	}
	if l := m.Latency(); l > 0 {
		parts = append(parts, common.MutedStyle.Render(fmt.Sprintf("📶 %dms", l)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, strings.Join(parts, "   "))
}

// centered 居中一行
func centered(m model.Model, s string) string {
	return lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, s)
}

// header 房间标题
func header(m model.Model, title string) string {
	code := m.State().RoomCode
	if code != "" {
		title = fmt.Sprintf("%s  ·  房间 %s", title, code)
	}
	return centered(m, common.TitleStyle(title))
}
