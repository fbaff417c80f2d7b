package handler

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/ui/model"
)

func handleMsgChat(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return nil
	}
	m.State().AddChat(FormatChatLine(payload))
	return nil
}

// FormatChatLine 格式化一条聊天记录
func FormatChatLine(p *protocol.ChatPayload) string {
	name := p.Name
	if name == "" {
		name = "未知"
	}
	timeStr := time.UnixMilli(p.Time).Format("15:04")
	if p.Character != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", timeStr, name, p.Character, p.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", timeStr, name, p.Message)
}
