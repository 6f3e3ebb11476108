// Package tui is the interactive terminal client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/inkwell/internal/client/form"
	"github.com/starford/inkwell/internal/client/syncer"
	"github.com/starford/inkwell/internal/client/view"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	offlineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	itemStyle        = lipgloss.NewStyle().PaddingLeft(2)
	excerptStyle     = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("250"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	labelStyle       = lipgloss.NewStyle().Bold(true).Width(9)
	focusedLabel     = labelStyle.Copy().Foreground(lipgloss.Color("212"))
	placeholderStyle = lipgloss.NewStyle().Italic(true).PaddingLeft(2)
)

type screen int

const (
	screenList screen = iota
	screenForm
	screenConfirm
)

const (
	fieldTitle = iota
	fieldDate
	fieldContent
	fieldCount
)

type refreshedMsg struct{}

type savedMsg struct{ err error }

type deletedMsg struct{ err error }

type promptMsg struct{ req confirmRequest }

// Model is the bubbletea model. It holds no posts of its own; the list comes
// from the shared state on every View.
type Model struct {
	ctx      context.Context
	sync     *syncer.Controller
	form     *form.Controller
	state    *syncer.State
	dispatch *view.Dispatcher
	confirm  *Confirmer

	screen  screen
	cursor  int
	pending string
	prompt  confirmRequest
	next    tea.Cmd
	editID  string
	focus   int
	title   textinput.Model
	date    textinput.Model
	content textarea.Model
	err     error
}

// New builds a model over an existing sync and form controller. fc must have
// been built with conf as its confirmer.
func New(ctx context.Context, sc *syncer.Controller, fc *form.Controller, conf *Confirmer) *Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD (blank for today)"
	date.CharLimit = 10
	content := textarea.New()
	content.Placeholder = "Write something…"
	content.SetHeight(6)

	m := &Model{
		ctx:      ctx,
		sync:     sc,
		form:     fc,
		state:    sc.State(),
		dispatch: view.NewDispatcher(),
		confirm:  conf,
		title:    title,
		date:     date,
		content:  content,
	}
	m.dispatch.Handle(view.CommandEdit, m.onEdit)
	m.dispatch.Handle(view.CommandDelete, m.onDelete)
	return m
}

// Run starts the program in the alternate screen and blocks until the user quits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) onEdit(_ context.Context, id string) error {
	if !m.form.StartEdit(id) {
		return fmt.Errorf("post %s not found", id)
	}
	m.openForm()
	return nil
}

func (m *Model) onDelete(_ context.Context, id string) error {
	m.pending = id
	m.next = tea.Batch(m.requestDelete(id), m.awaitPrompt())
	return nil
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		m.sync.Refresh(m.ctx)
		return refreshedMsg{}
	}
}

func (m *Model) submit(v form.Values) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.form.Submit(m.ctx, v)}
	}
}

func (m *Model) requestDelete(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.form.RequestDelete(m.ctx, id)
		return deletedMsg{err: err}
	}
}

func (m *Model) awaitPrompt() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-m.confirm.requests:
			return promptMsg{req: req}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.refresh()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.title.Width = msg.Width - 12
		m.date.Width = 12
		m.content.SetWidth(msg.Width - 4)
		return m, nil

	case refreshedMsg:
		m.clampCursor()
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.screen = screenList
			m.clampCursor()
		}
		return m, nil

	case promptMsg:
		m.prompt = msg.req
		m.screen = screenConfirm
		return m, nil

	case deletedMsg:
		m.err = msg.err
		m.pending = ""
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) selected() (string, bool) {
	page := view.Build(m.state.Posts())
	if m.cursor < 0 || m.cursor >= len(page.Cards) {
		return "", false
	}
	return page.Cards[m.cursor].ID, true
}

func (m *Model) clampCursor() {
	n := len(m.state.Posts())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.state.Posts())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, m.refresh()
	case "n":
		m.openBlank()
	case "e", "d":
		id, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := view.CommandEdit
		if msg.String() == "d" {
			cmd = view.CommandDelete
		}
		m.err = m.dispatch.Dispatch(m.ctx, view.Action{Command: cmd, PostID: id})
		next := m.next
		m.next = nil
		return m, next
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	answer := false
	switch msg.String() {
	case "y", "Y":
		answer = true
	case "n", "N", "esc":
	default:
		return m, nil
	}
	m.prompt.reply <- answer
	m.prompt = confirmRequest{}
	m.screen = screenList
	return m, nil
}

func (m *Model) openForm() {
	m.fill(m.form.Values())
}

func (m *Model) openBlank() {
	m.fill(form.Values{})
}

func (m *Model) fill(v form.Values) {
	m.editID = v.ID
	m.title.SetValue(v.Title)
	m.date.SetValue(v.Date)
	m.content.SetValue(v.Content)
	m.err = nil
	m.screen = screenForm
	m.setFocus(fieldTitle)
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.title.Blur()
	m.date.Blur()
	m.content.Blur()
	switch f {
	case fieldTitle:
		m.title.Focus()
	case fieldDate:
		m.date.Focus()
	case fieldContent:
		m.content.Focus()
	}
}

func (m *Model) values() form.Values {
	return form.Values{
		ID:      m.editID,
		Title:   m.title.Value(),
		Date:    m.date.Value(),
		Content: m.content.Value(),
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.Cancel()
		m.screen = screenList
		m.err = nil
		return m, nil
	case "tab":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "ctrl+s":
		return m, m.submit(m.values())
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDate:
		m.date, cmd = m.date.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("inkwell") + "  ")
	status := m.state.Status()
	if m.state.Online() {
		b.WriteString(statusStyle.Render(status))
	} else {
		b.WriteString(offlineStyle.Render(status))
	}
	b.WriteString("\n\n")

	switch m.screen {
	case screenForm:
		m.viewForm(&b)
	case screenConfirm:
		title := m.pending
		if p, ok := m.state.Find(m.pending); ok {
			title = p.Title
		}
		b.WriteString(fmt.Sprintf("%s %q (y/n)\n", m.prompt.prompt, title))
	default:
		m.viewList(&b)
	}

	if m.err != nil {
		msg := m.err.Error()
		if errors.Is(m.err, form.ErrMissingFields) {
			msg = "Title and content are required."
		}
		b.WriteString("\n" + errorStyle.Render(msg) + "\n")
	}
	return b.String()
}

func (m *Model) viewList(b *strings.Builder) {
	page := view.Build(m.state.Posts())
	if page.Empty {
		b.WriteString(placeholderStyle.Render(page.Placeholder) + "\n")
	}
	for i, c := range page.Cards {
		line := fmt.Sprintf("%s  %s", c.Date, c.Title)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render(line) + "\n")
		}
		b.WriteString(excerptStyle.Render(c.Excerpt) + "\n")
	}
	b.WriteString(helpStyle.Render("j/k move • e edit • d delete • n new • r refresh • q quit"))
}

func (m *Model) viewForm(b *strings.Builder) {
	heading := "New post"
	if m.editID != "" {
		heading = "Edit post"
	}
	b.WriteString(headerStyle.Render(heading) + "\n\n")

	label := func(f int, s string) string {
		if m.focus == f {
			return focusedLabel.Render(s)
		}
		return labelStyle.Render(s)
	}
	b.WriteString(label(fieldTitle, "Title") + m.title.View() + "\n")
	b.WriteString(label(fieldDate, "Date") + m.date.View() + "\n")
	b.WriteString(label(fieldContent, "Content") + "\n" + m.content.View() + "\n")
	b.WriteString(helpStyle.Render("tab next field • ctrl+s save • esc cancel"))
}
