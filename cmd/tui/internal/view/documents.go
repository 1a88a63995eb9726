package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type documentsState int

const (
	documentsStateBrowse documentsState = iota
	documentsStateSearch
)

var sourceFilters = []document.Source{"", document.SourceGenerated, document.SourceUploaded}

// DocumentsModel browses the unified document view.
type DocumentsModel struct {
	CommonModel
	docs   *document.Service
	viewer document.Viewer

	state documentsState
	table table.Model
	views []document.UnifiedView
	form  *huh.Form

	sourceIdx int
	filter    document.UnifiedFilter
	loading   bool
	err       error
}

func NewDocumentsModel(docs *document.Service, viewer document.Viewer) DocumentsModel {
	columns := []table.Column{
		{Title: "Source", Width: 10},
		{Title: "Type", Width: 24},
		{Title: "Reference", Width: 16},
		{Title: "Status", Width: 16},
		{Title: "Entity", Width: 12},
		{Title: "Created", Width: 11},
		{Title: "Expires", Width: 11},
		{Title: "Size", Width: 10},
	}

	return DocumentsModel{
		docs:    docs,
		viewer:  viewer,
		table:   newTable(columns, 15),
		loading: true,
	}
}

func (m DocumentsModel) Title() string { return "Documents" }

func (m DocumentsModel) ShortHelp() string {
	if m.state == documentsStateSearch {
		return "Enter: search | Esc: cancel"
	}

	return "Esc: back | s: source | h: history | /: search | r: refresh"
}

func (m DocumentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DocumentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDocumentsMsg:
		m.loading = false
		m.err = msg.err
		m.views = msg.views
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == documentsStateSearch {
		return m.updateSearch(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.sourceIdx = (m.sourceIdx + 1) % len(sourceFilters)
			m.filter.Source = sourceFilters[m.sourceIdx]

			return m, m.loadCmd()
		case "h":
			m.filter.IncludeHistory = !m.filter.IncludeHistory
			return m, m.loadCmd()
		case "/":
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Key("search").
						Title("Search").
						Description("Title, number, member name or tag").
						Value(new(m.filter.Search)),
				),
			).WithWidth(45).WithShowHelp(false)
			m.state = documentsStateSearch
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DocumentsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = documentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.filter.Search = m.form.GetString("search")
	m.state = documentsStateBrowse
	m.form = nil
	m.table.Focus()

	return m, m.loadCmd()
}

func (m DocumentsModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading documents...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	source := "All"
	if m.filter.Source != "" {
		source = string(m.filter.Source)
	}

	history := "hidden"
	if m.filter.IncludeHistory {
		history = "shown"
	}

	search := "-"
	if m.filter.Search != "" {
		search = m.filter.Search
	}

	header := fmt.Sprintf("[s] Source: %s | [h] History: %s | [/] Search: %s | %d documents",
		activeStyle(source), activeStyle(history), activeStyle(search), len(m.views))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxStyle.Render(m.table.View()),
	)

	if m.state == documentsStateSearch && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return panelStyle.Render(content)
}

func (m *DocumentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.views))

	for _, v := range m.views {
		ref := v.Number
		if ref == "" {
			ref = v.File.Name
		}

		rows = append(rows, table.Row{
			string(v.Source),
			v.Type,
			ref,
			v.Status,
			v.EntityID,
			FormatDate(v.CreatedAt),
			FormatOptionalDate(v.ExpiresAt),
			FormatSize(v.File.Size),
		})
	}

	m.table.SetRows(rows)
}

type loadDocumentsMsg struct {
	views []document.UnifiedView
	err   error
}

func (m DocumentsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		views, err := m.docs.ListUnified(ctx, filter, m.viewer)

		return loadDocumentsMsg{views: views, err: err}
	}
}
