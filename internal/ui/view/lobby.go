package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/impostor/internal/ui/common"
	"github.com/palemoky/impostor/internal/ui/model"
)

// MenuView renders the main menu.
func MenuView(m model.Model) string {
	var sb strings.Builder

	sb.WriteString(centered(m, common.TitleStyle("🎭 谁是内鬼")))
	sb.WriteString("\n\n")
	sb.WriteString(centered(m, fmt.Sprintf("欢迎, %s!", m.PlayerName())))
	sb.WriteString("\n\n")

	menu := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		"请选择:",
		"",
		"1. 创建房间",
		"或直接输入 5 位房间号加入",
	))
	sb.WriteString(centered(m, menu))
	sb.WriteString("\n\n")
	sb.WriteString(centered(m, m.Input().View()))
	sb.WriteString("\n")
	sb.WriteString(centered(m, common.MutedStyle.Render("ESC 退出")))
	return sb.String()
}

// JoinView renders name input and character selection.
func JoinView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(header(m, "🎭 加入房间"))
	sb.WriteString("\n\n")
	sb.WriteString(centered(m, common.BoxStyle.Render(RenderCharacterPicker(state))))
	sb.WriteString("\n\n")
	sb.WriteString(centered(m, "昵称: "+m.Input().View()))
	sb.WriteString("\n")
	sb.WriteString(centered(m, common.MutedStyle.Render("←/→ 选择角色 · Enter 加入 · ESC 返回")))
	return sb.String()
}

// RenderCharacterPicker 列出全部角色，已占用的置灰，当前选中的高亮
func RenderCharacterPicker(state *model.RoomState) string {
	selected := state.SelectedCharacter()

	var lines []string
	var row []string
	for i, c := range state.Characters {
		var cell string
		switch {
		case c == selected:
			cell = common.HighlightStyle.Render("▶ " + c)
		case slices.Contains(state.Taken, c):
			cell = common.MutedStyle.Render("✗ " + c)
		default:
			cell = "  " + c
		}
		row = append(row, lipgloss.NewStyle().Width(12).Render(cell))
		if (i+1)%5 == 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	title := fmt.Sprintf("选择角色 (%d 个可选)", len(state.Available()))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, lines...)...)
}

// LobbyView renders the waiting room.
func LobbyView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(header(m, "🏠 等待开局"))
	sb.WriteString("\n\n")
	sb.WriteString(centered(m, common.BoxStyle.Render(RenderRoster(m))))
	sb.WriteString("\n\n")

	hint := fmt.Sprintf("等待房主开局 (至少 3 人，当前 %d 人)", len(state.Players))
	if state.IsHost(m.PlayerID()) {
		hint = fmt.Sprintf("你是房主，按 S 开局 (至少 3 人，当前 %d 人)", len(state.Players))
	}
	sb.WriteString(centered(m, hint))
	return sb.String()
}

// RenderRoster 带序号的玩家列表
func RenderRoster(m model.Model) string {
	state := m.State()
	var sb strings.Builder
	sb.WriteString("玩家列表:\n")
	for i, p := range state.Players {
		marker := ""
		if p.ID == state.HostID {
			marker += " " + common.HostIcon
		}
		if p.ID == m.PlayerID() {
			marker += " (你)"
		}
		fmt.Fprintf(&sb, "  %d. %s [%s]%s\n", i+1, common.TruncateName(p.Name, 20), p.Character, marker)
	}
	return strings.TrimRight(sb.String(), "\n")
}
