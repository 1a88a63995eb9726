package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type requirementsState int

const (
	requirementsStateForm requirementsState = iota
	requirementsStateChecking
	requirementsStateResult
)

// RequirementsModel checks an entity's required uploads.
type RequirementsModel struct {
	CommonModel
	docs *document.Service

	state    requirementsState
	form     *huh.Form
	progress progress.Model

	result *document.RequirementsCheckResult
	err    error
}

func NewRequirementsModel(docs *document.Service) RequirementsModel {
	m := RequirementsModel{
		docs:     docs,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.form = buildRequirementsForm()

	return m
}

func buildRequirementsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("scope").
				Title("Scope").
				Options(
					huh.NewOption("Association", string(catalog.ScopeAssociation)),
					huh.NewOption("Member", string(catalog.ScopeMember)),
					huh.NewOption("Parcel", string(catalog.ScopeParcel)),
					huh.NewOption("Transaction", string(catalog.ScopeTransaction)),
				),
			huh.NewInput().
				Key("entity").
				Title("Entity ID").
				Description("Leave empty for the association"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RequirementsModel) Title() string { return "Requirements" }

func (m RequirementsModel) ShortHelp() string {
	if m.state == requirementsStateResult {
		return "Enter: check another | Esc: back"
	}

	return "Esc: back | Enter: confirm"
}

func (m RequirementsModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RequirementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(requirementsResultMsg); ok {
		m.state = requirementsStateResult
		m.result = res.result
		m.err = res.err

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch m.state {
	case requirementsStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = requirementsStateChecking

		return m, m.checkCmd(catalog.Scope(m.form.GetString("scope")), m.form.GetString("entity"))

	case requirementsStateResult:
		if isKey && keyMsg.Type == tea.KeyEnter {
			m.state = requirementsStateForm
			m.form = buildRequirementsForm()
			m.result = nil
			m.err = nil

			return m, m.form.Init()
		}
	}

	return m, nil
}

func (m RequirementsModel) View() string {
	switch m.state {
	case requirementsStateForm:
		return panelStyle.Render(m.form.View())
	case requirementsStateChecking:
		return panelStyle.Render("Checking requirements...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	r := m.result

	target := string(r.Scope)
	if r.EntityID != "" {
		target += " " + r.EntityID
	}

	verdict := errorStyle("INCOMPLETE")
	if r.IsComplete {
		verdict = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("COMPLETE")
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s: %s", activeStyle(target), verdict),
		"",
		fmt.Sprintf("%s %d%%", m.progress.ViewAs(float64(r.CompletionPercentage)/100), r.CompletionPercentage),
		"",
		requirementLine("Required", r.Required),
		requirementLine("Satisfied", r.Satisfied),
		requirementLine("Pending", r.Pending),
		requirementLine("Expired", r.Expired),
		requirementLine("Missing", r.Missing),
	))
}

func requirementLine(label string, types []string) string {
	list := "-"
	if len(types) > 0 {
		list = strings.Join(types, ", ")
	}

	return fmt.Sprintf("%-10s %s", label+":", list)
}

type requirementsResultMsg struct {
	result *document.RequirementsCheckResult
	err    error
}

func (m RequirementsModel) checkCmd(scope catalog.Scope, entityID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.docs.CheckRequirements(ctx, scope, entityID)

		return requirementsResultMsg{result: res, err: err}
	}
}
