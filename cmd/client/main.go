package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/logger"
	"github.com/palemoky/impostor/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:3000", "服务器地址")
	name := flag.String("name", "", "昵称，留空则随机生成")
	flag.Parse()

	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	logger.LogInfo("🔌 连接服务器 %s", serverURL)

	p := tea.NewProgram(ui.NewOnlineModel(serverURL, *name), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
