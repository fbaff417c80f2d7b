package view

import (
	"strings"

	"github.com/palemoky/impostor/internal/ui/common"
)

// 聊天框显示的最近条数
const chatBoxLines = 6

// RenderChatBox renders the most recent chat lines.
func RenderChatBox(history []string) string {
	if len(history) == 0 {
		return ""
	}
	start := max(0, len(history)-chatBoxLines)
	return common.BoxStyle.Width(50).Render(strings.Join(history[start:], "\n"))
}
