package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"copilot/internal/actions"
	"copilot/internal/session"
	"copilot/internal/types"
)

const (
	minViewportWidth = 20
	minContentHeight = 6
	chromeLines      = 4
)

type refreshMsg struct{}

type actionItemsMsg struct {
	items []*types.ActionItem
	err   error
}

type Model struct {
	controller *session.Controller
	tracker    *actions.Tracker

	viewport    viewport.Model
	chatInput   *ChatInput
	loader      spinner.Model
	width       int
	height      int
	status      string
	showActions bool
	actionItems []*types.ActionItem
	follow      bool
}

type Options struct {
	Markdown  bool
	AltScreen bool
}

func NewModel(controller *session.Controller, tracker *actions.Tracker, opts Options) Model {
	vp := viewport.New(minViewportWidth, minContentHeight-1)
	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()
	setMarkdownEnabled(opts.Markdown)

	input := NewChatInput(minViewportWidth)
	input.SetPlaceholder("Ask your sales copilot...")
	input.Focus()

	return Model{
		controller: controller,
		tracker:    tracker,
		viewport:   vp,
		chatInput:  input,
		loader:     loader,
		follow:     true,
	}
}

func Run(controller *session.Controller, tracker *actions.Tracker, opts Options) error {
	model := NewModel(controller, tracker, opts)
	var programOpts []tea.ProgramOption
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(&model, programOpts...)
	controller.OnChange(func() {
		p.Send(refreshMsg{})
	})
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.loader.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		if m.controller.IsLoading() {
			m.refreshContent()
			return m, cmd
		}
		return m, cmd

	case refreshMsg:
		m.refreshContent()
		if m.showActions {
			return m, fetchActionItemsCmd(m.tracker)
		}
		return m, nil

	case actionItemsMsg:
		if msg.err != nil {
			m.status = "action items error: " + msg.err.Error()
			return m, nil
		}
		m.actionItems = msg.items
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	cmd := m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.showActions {
			m.showActions = false
			return m, nil
		}
		if m.controller.IsLoading() {
			m.controller.CancelRequest()
			m.status = "request cancelled"
			return m, nil
		}
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" {
			return m, nil
		}
		m.chatInput.Clear()
		m.status = ""
		if m.controller.Mode() == types.ModePlanning && m.controller.Planner() != nil &&
			strings.TrimSpace(m.controller.Planner().CurrentQuestion()) != "" {
			if err := m.controller.RespondToQuestion(context.Background(), text); err != nil {
				m.status = "planner error: " + err.Error()
			}
			return m, m.loader.Tick
		}
		m.controller.SendMessage(context.Background(), text)
		return m, m.loader.Tick

	case "ctrl+n":
		m.controller.StartNewChat()
		m.status = "new conversation"
		return m, nil

	case "ctrl+t":
		m.controller.SetMode(nextMode(m.controller.Mode()))
		m.status = "mode: " + string(m.controller.Mode())
		return m, nil

	case "ctrl+a":
		m.showActions = !m.showActions
		if m.showActions {
			return m, fetchActionItemsCmd(m.tracker)
		}
		return m, nil

	case "ctrl+y":
		return m, m.copyLastAssistant()

	case "pgup", "pgdown", "up", "down":
		m.follow = false
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		if m.viewport.AtBottom() {
			m.follow = true
		}
		return m, cmd

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if handled, cmd := m.handleDigit(msg.String()); handled {
			return m, cmd
		}
	}

	cmd := m.chatInput.Update(msg)
	return m, cmd
}

// handleDigit routes number keys: approve an action item while the panel is
// open, otherwise pick a disambiguation candidate when one is on screen and
// the input is empty.
func (m *Model) handleDigit(key string) (bool, tea.Cmd) {
	index := int(key[0] - '1')
	if m.showActions {
		if index >= len(m.actionItems) {
			return true, nil
		}
		item := m.actionItems[index]
		if item.Status != types.ActionItemStatusPending {
			m.status = "already " + string(item.Status)
			return true, nil
		}
		return true, confirmActionItemCmd(m.tracker, item.ID)
	}
	if strings.TrimSpace(m.chatInput.Value()) != "" {
		return false, nil
	}
	block := m.currentDisambiguation()
	if block == nil || index >= len(block.Candidates) {
		return false, nil
	}
	candidate := block.Candidates[index]
	m.controller.SendMessage(context.Background(), "I meant "+candidateLine(candidate))
	return true, m.loader.Tick
}

func (m *Model) currentDisambiguation() *types.EntityDisambiguation {
	messages := m.controller.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleAssistant {
			return messages[i].Disambiguation
		}
	}
	return nil
}

func (m *Model) copyLastAssistant() tea.Cmd {
	messages := m.controller.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != types.RoleAssistant || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if _, err := copyTextToClipboard(msg.Content); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied last reply"
		}
		return nil
	}
	m.status = "nothing to copy"
	return nil
}

func (m *Model) resize() {
	width := maxInt(m.width, minViewportWidth)
	height := maxInt(m.height, minContentHeight)
	m.viewport.Width = width
	m.viewport.Height = height - chromeLines
	m.chatInput.Resize(width)
}

func (m *Model) refreshContent() {
	width := maxInt(m.viewport.Width, minViewportWidth)
	content := renderTranscript(m.controller.Messages(), width, m.loader.View())
	m.viewport.SetContent(content)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	if m.showActions {
		b.WriteString(renderActionPanel(m.actionItems, maxInt(m.viewport.Width, minViewportWidth)))
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.chatInput.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	return b.String()
}

func (m *Model) headerView() string {
	mode := modeStyle.Render(strings.ToUpper(string(m.controller.Mode())))
	header := fmt.Sprintf("%s · sales copilot", mode)
	if m.controller.IsLoading() {
		header += " " + m.loader.View()
	}
	return header
}

func (m *Model) statusView() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return statusStyle.Render("enter send · esc cancel · ^t mode · ^n new chat · ^a actions · ^y copy · ^c quit")
}

func nextMode(mode types.Mode) types.Mode {
	switch mode {
	case types.ModeClassic:
		return types.ModePlanning
	case types.ModePlanning:
		return types.ModeAutonomous
	default:
		return types.ModeClassic
	}
}

func fetchActionItemsCmd(tracker *actions.Tracker) tea.Cmd {
	return func() tea.Msg {
		items, err := tracker.All(context.Background())
		return actionItemsMsg{items: items, err: err}
	}
}

func confirmActionItemCmd(tracker *actions.Tracker, id string) tea.Cmd {
	return func() tea.Msg {
		if _, err := tracker.Confirm(context.Background(), id); err != nil {
			return actionItemsMsg{err: err}
		}
		items, err := tracker.All(context.Background())
		return actionItemsMsg{items: items, err: err}
	}
}
