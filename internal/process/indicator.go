package process

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const stopTimeout = 500 * time.Millisecond

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2"))
)

// Indicator shows progress while a command runs.
type Indicator interface {
	Start(label string)
	Stop()
}

// NewIndicator returns a spinner drawing on f when f is a terminal, and a silent
// indicator otherwise.
func NewIndicator(f *os.File) Indicator {
	if f == nil {
		return nopIndicator{}
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nopIndicator{}
	}
	return NewSpinner(f)
}

type nopIndicator struct{}

func (nopIndicator) Start(string) {}
func (nopIndicator) Stop()        {}

// Spinner renders an inline bubbletea spinner followed by a label.
type Spinner struct {
	writer io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewSpinner creates a spinner drawing on w regardless of whether w is a terminal.
func NewSpinner(w io.Writer) *Spinner {
	if w == nil {
		w = io.Discard
	}
	return &Spinner{writer: w}
}

// Start shows the spinner with label. A running spinner is stopped first.
func (s *Spinner) Start(label string) {
	s.Stop()

	model := newSpinnerModel(label)
	program := tea.NewProgram(
		model,
		tea.WithOutput(s.writer),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})

	s.mu.Lock()
	s.program = program
	s.done = done
	s.mu.Unlock()

	go func() {
		_, _ = program.Run()
		close(done)
	}()
}

// Stop clears the spinner line and waits for the program to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	program, done := s.program, s.done
	s.program, s.done = nil, nil
	s.mu.Unlock()

	if program == nil {
		return
	}

	go program.Send(stopMsg{})
	select {
	case <-done:
	case <-time.After(stopTimeout):
		program.Kill()
		<-done
	}
}

type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	stopped bool
}

func newSpinnerModel(label string) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
		label: label,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopped {
		return ""
	}
	return m.spinner.View() + " " + labelStyle.Render(m.label)
}
