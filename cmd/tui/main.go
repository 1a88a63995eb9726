package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/dossier/internal/app"
	"github.com/MrJamesThe3rd/dossier/internal/config"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/export"
	"github.com/MrJamesThe3rd/dossier/internal/logging"
)

// The terminal belongs to bubbletea, so logs go to a file.
const logFile = "dossier-tui.log"

type model struct {
	app           *app.App
	exportService *export.Service
	viewer        document.Viewer
	expiryDays    int

	currentView View

	documentsView    view.DocumentsModel
	verifyView       view.VerifyModel
	requirementsView view.RequirementsModel
	expiringView     view.ExpiringModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewDocuments    View = 1
	ViewVerify       View = 2
	ViewRequirements View = 3
	ViewExpiring     View = 4
	ViewExport       View = 5
)

func initialModel(a *app.App, cfg *config.Config) model {
	// The operator at the terminal has full access.
	viewer := document.Viewer{UserID: "operator", Admin: true}
	expSvc := export.NewService(a.Documents, a.Files)

	return model{
		app:           a,
		exportService: expSvc,
		viewer:        viewer,
		expiryDays:    cfg.Documents.ExpiryWindowDays,
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDocuments
				m.documentsView = view.NewDocumentsModel(m.app.Documents, m.viewer)

				return m, m.documentsView.Init()
			case "2":
				m.currentView = ViewVerify
				m.verifyView = view.NewVerifyModel(m.app.Documents)

				return m, m.verifyView.Init()
			case "3":
				m.currentView = ViewRequirements
				m.requirementsView = view.NewRequirementsModel(m.app.Documents)

				return m, m.requirementsView.Init()
			case "4":
				m.currentView = ViewExpiring
				m.expiringView = view.NewExpiringModel(m.app.Documents, m.expiryDays)

				return m, m.expiringView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.viewer)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDocuments:
		var newModel tea.Model
		newModel, cmd = m.documentsView.Update(msg)
		m.documentsView = newModel.(view.DocumentsModel)
	case ViewVerify:
		var newModel tea.Model
		newModel, cmd = m.verifyView.Update(msg)
		m.verifyView = newModel.(view.VerifyModel)
	case ViewRequirements:
		var newModel tea.Model
		newModel, cmd = m.requirementsView.Update(msg)
		m.requirementsView = newModel.(view.RequirementsModel)
	case ViewExpiring:
		var newModel tea.Model
		newModel, cmd = m.expiringView.Update(msg)
		m.expiringView = newModel.(view.ExpiringModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(1)

func (m model) View() string {
	var v view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Dossier TUI\n\n" +
				"1. Browse Documents\n" +
				"2. Verify Uploads\n" +
				"3. Check Requirements\n" +
				"4. Expiring Soon\n" +
				"5. Export Documents\n\n" +
				"q. Quit",
		)
	case ViewDocuments:
		v = m.documentsView
	case ViewVerify:
		v = m.verifyView
	case ViewRequirements:
		v = m.requirementsView
	case ViewExpiring:
		v = m.expiringView
	case ViewExport:
		v = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), helpStyle.Render(v.ShortHelp()))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}

	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	logging.Init(level, cfg.Log.Format, f)

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
