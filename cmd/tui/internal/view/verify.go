package view

import (
	"fmt"
	"maps"
	"os/user"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type verifyState int

const (
	verifyStateReviewing verifyState = iota
	verifyStateRejecting
)

// VerifyModel walks the queue of uploads waiting for verification.
type VerifyModel struct {
	CommonModel
	docs     *document.Service
	verifier string

	state verifyState
	form  *huh.Form

	queue      []*document.UploadedDocument
	current    *document.UploadedDocument
	totalCount int

	status  string
	loading bool
}

func NewVerifyModel(docs *document.Service) VerifyModel {
	return VerifyModel{
		docs:     docs,
		verifier: currentOperator(),
		loading:  true,
	}
}

func currentOperator() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "operator"
	}

	return u.Username
}

func (m VerifyModel) Title() string { return "Verify Uploads" }

func (m VerifyModel) ShortHelp() string {
	if m.state == verifyStateRejecting {
		return "Enter: reject | Esc: cancel"
	}

	return "a: verify | x: reject | n: skip | Esc: back"
}

func (m VerifyModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m VerifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading uploads: %v", msg.err)
			return m, nil
		}

		m.queue = msg.docs
		m.totalCount = len(m.queue)
		m.next()

		return m, nil

	case verifyResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.next()

		return m, nil
	}

	if m.state == verifyStateRejecting {
		return m.updateReject(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		if m.current != nil {
			m.next()
		}
	case "a":
		if m.current != nil {
			return m, m.verifyCmd(m.current, document.VerificationVerified, "")
		}
	case "x":
		if m.current != nil {
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewText().
						Key("notes").
						Title("Rejection reason").
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("a rejection needs a reason")
							}

							return nil
						}),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = verifyStateRejecting

			return m, m.form.Init()
		}
	}

	return m, nil
}

func (m VerifyModel) updateReject(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = verifyStateReviewing
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	notes := m.form.GetString("notes")
	m.state = verifyStateReviewing
	m.form = nil

	return m, m.verifyCmd(m.current, document.VerificationRejected, notes)
}

func (m VerifyModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading pending uploads...")
	}

	if m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	u := m.current

	var metadata strings.Builder
	for _, k := range slices.Sorted(maps.Keys(u.Metadata)) {
		fmt.Fprintf(&metadata, "  %s: %s\n", k, u.Metadata[k])
	}

	info := fmt.Sprintf(
		"Type:     %s\nFile:     %s (%s, %s)\nEntity:   %s %s\nUploaded: %s by %s\nExpires:  %s\nTags:     %s\nMetadata:\n%s",
		u.DocumentType,
		u.File.OriginalName, u.File.MIMEType, FormatSize(u.File.Size),
		u.LinkedEntityType, u.LinkedEntityID,
		FormatDate(u.UploadedAt), u.UploadedBy,
		FormatOptionalDate(u.ExpiryDate),
		strings.Join(u.Tags, ", "),
		metadata.String(),
	)

	content := fmt.Sprintf("%s\n\n%s", activeStyle(m.status), info)

	if m.state == verifyStateRejecting && m.form != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, boxStyle.Padding(0, 1).Render(m.form.View()))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

func (m *VerifyModel) next() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "All done! No uploads waiting for verification."

		return
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]

	reviewed := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d as %s", reviewed, m.totalCount, m.verifier)
}

type loadPendingMsg struct {
	docs []*document.UploadedDocument
	err  error
}

func (m VerifyModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		docs, err := m.docs.ListUploaded(ctx, document.UploadFilter{
			ActiveOnly:   true,
			Verification: new(document.VerificationPending),
		})

		return loadPendingMsg{docs: docs, err: err}
	}
}

type verifyResultMsg struct {
	err error
}

func (m VerifyModel) verifyCmd(u *document.UploadedDocument, decision document.VerificationStatus, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.docs.Verify(ctx, u.ID, m.verifier, decision, notes)

		return verifyResultMsg{err: err}
	}
}
