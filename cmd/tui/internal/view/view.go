package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct{}

// BackMsg returns to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	_ View = DocumentsModel{}
	_ View = VerifyModel{}
	_ View = RequirementsModel{}
	_ View = ExpiringModel{}
	_ View = ExportModel{}
)
