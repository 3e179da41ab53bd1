package status

import (
	"strings"
	"sync"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Intents is the subset of the tracker the watch UI drives. Every call must
// return without blocking on the tracker.
type Intents interface {
	Input(text string)
	Submit(text string)
	RequestMessageWait()
	CancelMessageWait()
}

type SnapshotMsg struct {
	Snapshot domain.Snapshot
}

type NotificationMsg struct {
	Notification domain.Notification
}

type WatchModel struct {
	intents      Intents
	input        textinput.Model
	spinner      spinner.Model
	styles       styles
	snapshot     domain.Snapshot
	notification *domain.Notification
	quitting     bool
}

func NewWatchModel(intents Intents, initial string) WatchModel {
	in := textinput.New()
	in.Placeholder = "10-digit PNR"
	in.CharLimit = 32
	in.Prompt = "PNR › "
	in.SetValue(initial)
	in.Focus()

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(newStyles().spinner),
	)

	return WatchModel{
		intents: intents,
		input:   in,
		spinner: s,
		styles:  newStyles(),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case SnapshotMsg:
		wasBusy := m.busy()
		m.snapshot = msg.Snapshot
		if !wasBusy && m.busy() {
			return m, m.spinner.Tick
		}
		return m, nil
	case NotificationMsg:
		n := msg.Notification
		m.notification = &n
		if n.Kind == domain.NotifyIdentifierDetected {
			m.input.SetValue(m.snapshot.Input)
			m.input.CursorEnd()
		}
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.snapshot.Waiting {
			m.intents.CancelMessageWait()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.notification = nil
		m.intents.Submit(m.input.Value())
		return m, nil
	case tea.KeyCtrlS:
		m.notification = nil
		m.intents.RequestMessageWait()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.intents.Input(after)
	}
	return m, cmd
}

func (m WatchModel) busy() bool {
	return m.snapshot.Loading || m.snapshot.Waiting
}

func (m WatchModel) Snapshot() domain.Snapshot {
	return m.snapshot
}

func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles

	lines := []string{
		s.title.Render("PNR Status"),
		m.input.View(),
	}
	if m.snapshot.Rejection != "" && m.snapshot.Input != "" {
		lines = append(lines, s.warning.Render(m.snapshot.Rejection.Message()))
	}

	switch {
	case m.snapshot.Waiting:
		lines = append(lines, s.section.Render(m.spinner.View()+" Waiting for a message with a PNR... (esc to cancel)"))
	case m.snapshot.Loading:
		lines = append(lines, s.section.Render(m.spinner.View()+" Fetching train details..."))
	}

	if m.snapshot.Record != nil {
		lines = append(lines, s.section.Render(renderRecord(*m.snapshot.Record, s)))
		if m.snapshot.Refreshing {
			lines = append(lines, s.live.Render("● live"))
		}
	}

	if m.snapshot.LastMessage != nil {
		lines = append(lines, renderLastMessage(*m.snapshot.LastMessage, s))
	}
	if m.notification != nil {
		lines = append(lines, s.section.Render(renderNotification(*m.notification, s)))
	}

	help := []string{"enter search"}
	if m.snapshot.MessagesPermitted {
		help = append(help, "ctrl+s read PNR from message")
	}
	help = append(help, "esc cancel/quit", "ctrl+c quit")
	lines = append(lines, s.section.Render(s.helpFooter.Render(strings.Join(help, " • "))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// ProgramPresenter forwards tracker output into a running bubbletea program.
// Output produced before Bind is dropped.
type ProgramPresenter struct {
	mu      sync.RWMutex
	program *tea.Program
}

func NewProgramPresenter() *ProgramPresenter {
	return &ProgramPresenter{}
}

func (p *ProgramPresenter) Bind(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

func (p *ProgramPresenter) Present(snapshot domain.Snapshot) {
	p.send(SnapshotMsg{Snapshot: snapshot})
}

func (p *ProgramPresenter) Notify(notification domain.Notification) {
	p.send(NotificationMsg{Notification: notification})
}

func (p *ProgramPresenter) send(msg tea.Msg) {
	p.mu.RLock()
	program := p.program
	p.mu.RUnlock()
	if program != nil {
		program.Send(msg)
	}
}
