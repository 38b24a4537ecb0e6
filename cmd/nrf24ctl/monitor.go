package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"nrf24.dev"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive terminal monitor",
	Long: `Monitor shows the link state and received packets live. Type a payload
and press enter to transmit it; completion is polled cooperatively so
the display never blocks on the radio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		m := newMonitor(r)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

type monitorTickMsg time.Time

type monitorModel struct {
	radio *nrf24.Radio

	input textinput.Model
	log   viewport.Model
	lines []string

	sending  bool
	outcome  string
	observe  nrf24.ObserveTx
	received int
	err      error

	width, height int
}

func newMonitor(r *nrf24.Radio) monitorModel {
	input := textinput.New()
	input.Placeholder = "payload to send"
	input.CharLimit = nrf24.MaxPayload
	input.Focus()
	return monitorModel{
		radio: r,
		input: input,
		log:   viewport.New(80, 12),
	}
}

func monitorTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, monitorTick())
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.startSend()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.log.Width = msg.Width - 4
		m.log.Height = msg.Height - 10
	case monitorTickMsg:
		m.poll()
		return m, monitorTick()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startSend queues the typed payload. Completion is observed from the
// tick handler through PollSend.
func (m *monitorModel) startSend() {
	payload := m.input.Value()
	if payload == "" || m.sending {
		return
	}
	if err := m.radio.Send([]byte(payload)); err != nil {
		m.err = err
		return
	}
	m.sending = true
	m.outcome = "sending"
	m.input.Reset()
}

// poll advances the send state machine and drains received packets.
func (m *monitorModel) poll() {
	if m.sending {
		st, err := m.radio.PollSend()
		if err != nil {
			m.err = err
			m.sending = false
			return
		}
		switch st {
		case nrf24.SendDone:
			m.sending = false
			m.outcome = "delivered"
		case nrf24.SendFailed:
			m.sending = false
			m.outcome = "lost"
		}
		if o, err := m.radio.Observe(); err == nil {
			m.observe = o
		}
		return
	}
	for {
		pipe, ok, err := m.radio.CanRead()
		if err != nil {
			m.err = err
			return
		}
		if !ok {
			return
		}
		p, err := m.radio.Read()
		if err != nil {
			m.err = err
			return
		}
		m.received++
		line := fmt.Sprintf("%s pipe %d  % x",
			time.Now().Format("15:04:05.000"), pipe, p.Bytes())
		m.lines = append(m.lines, line)
		if len(m.lines) > 500 {
			m.lines = m.lines[len(m.lines)-500:]
		}
		m.log.SetContent(joinLines(m.lines))
		m.log.GotoBottom()
	}
}

func (m monitorModel) View() string {
	cfg := m.radio.Config()
	status := fmt.Sprintf("%s ch %d  %v  %s  %s %d  %s %d",
		labelStyle.Render("link:"), cfg.Channel, cfg.Rate, formatPower(cfg.Power),
		labelStyle.Render("rx"), m.received,
		labelStyle.Render("lost"), m.observe.Lost())
	outcome := m.outcome
	switch outcome {
	case "delivered":
		outcome = okStyle.Render(outcome)
	case "lost":
		outcome = badStyle.Render(outcome)
	}
	if m.err != nil {
		outcome = badStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("nrf24 monitor"),
		status,
		borderStyle.Render(m.log.View()),
		m.input.View(),
		labelStyle.Render("enter: send  esc: quit  ")+outcome,
	)
}

func joinLines(lines []string) string {
	s := ""
	for i, l := range lines {
		if i > 0 {
			s += "\n"
		}
		s += l
	}
	return s
}
