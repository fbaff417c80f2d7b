package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/ui/common"
	"github.com/palemoky/impostor/internal/ui/model"
)

// RenderRole 身份卡片：内鬼看不到秘密词
func RenderRole(state *model.RoomState) string {
	if state.IsImpostor() {
		return lipgloss.JoinVertical(lipgloss.Left,
			common.ImpostorStyle.Render(common.ImpostorIcon+" 你是内鬼"),
			fmt.Sprintf("类别: %s", state.Category),
			common.MutedStyle.Render("不要暴露自己，猜出秘密词"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		common.SuccessStyle.Render(common.InvestigatorIcon+" 你是侦探"),
		fmt.Sprintf("类别: %s", state.Category),
		"秘密词: "+common.SecretStyle.Render(state.Secret),
	)
}

// RenderClues 线索列表，未提交的显示为等待中
func RenderClues(state *model.RoomState) string {
	var sb strings.Builder
	sb.WriteString("线索:\n")
	for _, c := range state.Clues {
		clue := common.MutedStyle.Render("…")
		if c.Clue != nil {
			clue = *c.Clue
		}
		marker := "  "
		if c.Name == state.CurrentPlayerName {
			marker = common.TurnIcon
		}
		fmt.Fprintf(&sb, "%s %s [%s]: %s\n", marker, common.TruncateName(c.Name, 20), c.Character, clue)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ClueView renders the clue phase.
func ClueView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(header(m, "🔍 线索阶段"))
	sb.WriteString("\n\n")

	role := common.BoxStyle.Render(RenderRole(state))
	clues := common.BoxStyle.Render(RenderClues(state))
	sb.WriteString(centered(m, lipgloss.JoinHorizontal(lipgloss.Top, role, "  ", clues)))
	sb.WriteString("\n\n")

	turn := fmt.Sprintf("轮到 %s  ⏱ %ds  (还剩 %d 条线索)", state.CurrentPlayerName, state.TimeRemaining, state.CluesRemaining)
	if state.IsMyTurn(m.PlayerID()) {
		turn = common.HighlightStyle.Render(fmt.Sprintf("轮到你了！ ⏱ %ds", state.TimeRemaining))
	}
	sb.WriteString(centered(m, turn))
	sb.WriteString("\n")
	sb.WriteString(centered(m, m.Input().View()))
	return sb.String()
}

// VotingView renders the voting phase with chat.
func VotingView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(header(m, "🗳️ 投票阶段"))
	sb.WriteString("\n\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		common.BoxStyle.Render(RenderRole(state)),
		common.BoxStyle.Render(RenderRoster(m)),
	)
	right := common.BoxStyle.Render(RenderClues(state))
	sb.WriteString(centered(m, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)))
	sb.WriteString("\n\n")

	progress := fmt.Sprintf("已投票 %d/%d", state.TotalVotes, state.TotalPlayers)
	if state.VotedFor != "" {
		progress += fmt.Sprintf("  ·  %s 你投给了 %s", common.VotedIcon, state.VotedFor)
	}
	sb.WriteString(centered(m, progress))
	sb.WriteString("\n")

	if chat := RenderChatBox(state.ChatHistory); chat != "" {
		sb.WriteString(centered(m, chat))
		sb.WriteString("\n")
	}
	sb.WriteString(centered(m, m.Input().View()))
	return sb.String()
}

// RevealView renders the round result.
func RevealView(m model.Model) string {
	state := m.State()
	var sb strings.Builder

	sb.WriteString(header(m, "🎬 揭晓"))
	sb.WriteString("\n\n")
	if state.Reveal != nil {
		sb.WriteString(centered(m, common.BoxStyle.Render(RenderReveal(state.Reveal))))
		sb.WriteString("\n\n")
	}

	hint := "等待房主开始下一局"
	if state.IsHost(m.PlayerID()) {
		hint = "按 S 开始下一局"
	}
	sb.WriteString(centered(m, hint))
	return sb.String()
}

// RenderReveal 揭晓详情
func RenderReveal(r *protocol.RevealPayload) string {
	var lines []string

	if r.RanAway {
		lines = append(lines, common.ImpostorStyle.Render(fmt.Sprintf("内鬼 %s 逃跑了！", r.ImpostorName)))
	} else {
		lines = append(lines, fmt.Sprintf("被投出: %s", r.Chosen))
		if r.IsImpostor {
			lines = append(lines, common.SuccessStyle.Render("✅ 抓到内鬼了！"))
		} else {
			lines = append(lines, common.ErrorStyle.Render("❌ 投错人了"))
		}
		lines = append(lines, fmt.Sprintf("内鬼是: %s", r.ImpostorName))
	}
	lines = append(lines, "秘密词: "+common.SecretStyle.Render(r.Secret))

	if len(r.VoteResults) > 0 {
		lines = append(lines, "", "投票明细:")
		for _, v := range r.VoteResults {
			lines = append(lines, fmt.Sprintf("  %s → %s", v.Voter, v.Voted))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
