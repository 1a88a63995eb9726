package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/export"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type ExportModel struct {
	CommonModel
	exportService *export.Service
	viewer        document.Viewer

	state   exportState
	err     error
	form    *huh.Form
	spinner spinner.Model
	archive string
	summary string
}

func NewExportModel(svc *export.Service, viewer document.Viewer) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService: svc,
		viewer:        viewer,
		state:         exportStateForm,
		form:          buildExportForm(),
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Documents" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	req := export.Request{
		EntityType: document.EntityType(m.form.GetString("entityType")),
		EntityID:   strings.TrimSpace(m.form.GetString("entityId")),
		Viewer:     m.viewer,
	}

	path := strings.TrimSpace(m.form.GetString("path"))
	if path == "" {
		path = "./exports"
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(req, path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.archive = result.archive
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func buildExportForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("entityType").
				Title("Entity").
				Options(
					huh.NewOption("Member", string(document.EntityMember)),
					huh.NewOption("Parcel", string(document.EntityParcel)),
					huh.NewOption("Transaction", string(document.EntityTransaction)),
					huh.NewOption("Association", string(document.EntityAssociation)),
				),
			huh.NewInput().
				Key("entityId").
				Title("Entity ID").
				Description("Leave empty for the association"),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return panelStyle.Render(m.form.View())

	case exportStateExporting:
		return panelStyle.Render(
			fmt.Sprintf("%s Collecting documents and writing the archive...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return panelStyle.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return panelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Archive: "+activeStyle(m.archive),
			"",
			"Summary:",
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	archive string
	body    string
	err     error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(req export.Request, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		archive, body, err := m.writeArchive(ctx, req, path)

		return exportResultMsg{archive: archive, body: body, err: err}
	}
}

func (m ExportModel) writeArchive(ctx context.Context, req export.Request, path string) (string, string, error) {
	staging, err := os.MkdirTemp("", "dossier-export-*")
	if err != nil {
		return "", "", fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	items, err := m.exportService.Export(ctx, req, staging)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output directory: %w", err)
	}

	entity := string(req.EntityType)
	if req.EntityID != "" {
		entity += "_" + req.EntityID
	}

	archive := filepath.Join(path, "dossier_"+filepath.Base(entity)+".zip")

	f, err := os.Create(archive)
	if err != nil {
		return "", "", fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	if err := m.exportService.WriteZip(f, m.exportService.Manifest(req, items), items); err != nil {
		return "", "", err
	}

	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("closing archive: %w", err)
	}

	return archive, m.exportService.GenerateSummary(items), nil
}
