package types

import (
	"github.com/palemoky/impostor/internal/protocol"
)

// Peer 一个在线玩家连接，房间和处理器只通过它收发消息
type Peer interface {
	GetID() string
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ServerState 处理器需要读取的服务器状态
type ServerState interface {
	IsMaintenanceMode() bool
}

// ChatLimiter 聊天限流
type ChatLimiter interface {
	AllowChat(clientID string) (allowed bool, reason string)
	RemoveClient(clientID string)
}
