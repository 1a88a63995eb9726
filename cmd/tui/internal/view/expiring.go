package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

// ExpiringModel lists generated and uploaded documents expiring soon.
type ExpiringModel struct {
	CommonModel
	docs *document.Service
	days int

	table   table.Model
	count   int
	loading bool
	err     error
}

func NewExpiringModel(docs *document.Service, days int) ExpiringModel {
	columns := []table.Column{
		{Title: "Source", Width: 10},
		{Title: "Type", Width: 24},
		{Title: "Reference", Width: 20},
		{Title: "Entity", Width: 12},
		{Title: "Expires", Width: 11},
		{Title: "Days Left", Width: 10},
	}

	return ExpiringModel{
		docs:    docs,
		days:    days,
		table:   newTable(columns, 15),
		loading: true,
	}
}

func (m ExpiringModel) Title() string { return "Expiring Soon" }

func (m ExpiringModel) ShortHelp() string {
	return "Esc: back | r: refresh"
}

func (m ExpiringModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ExpiringModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadExpiringMsg:
		m.loading = false
		m.err = msg.err
		m.count = len(msg.rows)
		m.table.SetRows(msg.rows)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ExpiringModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("%d documents expire within %s days", m.count, activeStyle(fmt.Sprint(m.days)))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxStyle.Render(m.table.View()),
	))
}

type expiringRow struct {
	source    document.Source
	typ       string
	reference string
	entity    string
	expires   time.Time
}

type loadExpiringMsg struct {
	rows []table.Row
	err  error
}

func (m ExpiringModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		generated, err := m.docs.Expiring(ctx, m.days)
		if err != nil {
			return loadExpiringMsg{err: err}
		}

		uploaded, err := m.docs.ExpiringUploaded(ctx, m.days)
		if err != nil {
			return loadExpiringMsg{err: err}
		}

		var items []expiringRow

		for _, d := range generated {
			items = append(items, expiringRow{
				source:    document.SourceGenerated,
				typ:       d.TemplateType,
				reference: d.DocumentNumber,
				entity:    d.MemberID,
				expires:   *d.ValidUntil,
			})
		}

		for _, u := range uploaded {
			items = append(items, expiringRow{
				source:    document.SourceUploaded,
				typ:       u.DocumentType,
				reference: u.File.OriginalName,
				entity:    u.LinkedEntityID,
				expires:   *u.ExpiryDate,
			})
		}

		slices.SortFunc(items, func(a, b expiringRow) int {
			return a.expires.Compare(b.expires)
		})

		now := time.Now()
		rows := make([]table.Row, 0, len(items))

		for _, it := range items {
			left := int(it.expires.Sub(now).Hours() / 24)
			rows = append(rows, table.Row{
				string(it.source),
				it.typ,
				it.reference,
				it.entity,
				FormatDate(it.expires),
				fmt.Sprint(max(left, 0)),
			})
		}

		return loadExpiringMsg{rows: rows}
	}
}
