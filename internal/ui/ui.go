// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/impostor/internal/ui/handler"
	"github.com/palemoky/impostor/internal/ui/input"
	"github.com/palemoky/impostor/internal/ui/model"
	"github.com/palemoky/impostor/internal/ui/view"
)

// NewOnlineModel creates a fully wired OnlineModel for serverURL.
func NewOnlineModel(serverURL, playerName string) *model.OnlineModel {
	m := model.NewOnlineModel(serverURL, playerName)
	wire(m)
	return m
}

func wire(m *model.OnlineModel) {
	m.SetServerMessageHandler(handler.HandleServerMessage)
	m.SetKeyHandler(input.HandleKeyPress)
	m.SetViewRenderer(view.CreateViewRenderer())
}
