package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/jsonxl/internal/config"
	"github.com/nconklindev/jsonxl/internal/converter"
	"github.com/nconklindev/jsonxl/internal/runner"
	"github.com/nconklindev/jsonxl/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateForm state = iota
	statePicker
	stateProcessing
	stateComplete
	stateError
)

const (
	focusURL = iota
	focusPath
)

const xlsxExt = ".xlsx"

const (
	msgMissingURL    = "Enter the API URL."
	msgMissingOutput = "Enter the output file path."
	msgSuccess       = "File generated successfully."
	msgFailure       = "Failed to generate the file:"
)

type Model struct {
	ctx        context.Context
	state      state
	urlInput   textinput.Model
	pathInput  textinput.Model
	focus      int
	filepicker filepicker.Model
	progress   progress.Model
	stage      string
	validation string
	handle     *runner.Handle
	result     *types.ConversionResult
	err        error
	width      int
	height     int
	newTask    func() runner.Task
}

// progressMsg and conversionCompleteMsg carry the handle they came from so
// messages from a task the user already abandoned can be dropped.
type progressMsg struct {
	handle *runner.Handle
	event  types.ProgressEvent
}

type conversionCompleteMsg struct {
	handle  *runner.Handle
	outcome types.Outcome
}

func New(ctx context.Context, cfg config.Config) Model {
	urlInput := textinput.New()
	urlInput.Placeholder = "URL of the API that returns JSON"
	urlInput.SetValue(cfg.URL)
	urlInput.Width = 60
	urlInput.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "Output path of the " + xlsxExt + " file"
	pathInput.SetValue(cfg.OutputPath)
	pathInput.Width = 60

	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.CurrentDirectory = startDirectory(cfg.OutputPath)

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#3E8EED"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB3F5"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB3F5"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#3E8EED")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	prog := progress.New(progress.WithGradient("#3E8EED", "#7FB3F5"))

	opts := converter.Options{Timeout: cfg.Timeout, SheetName: cfg.SheetName}

	return Model{
		ctx:        ctx,
		state:      stateForm,
		urlInput:   urlInput,
		pathInput:  pathInput,
		filepicker: fp,
		progress:   prog,
		newTask: func() runner.Task {
			return converter.NewTask(opts)
		},
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, help text and border
		height := msg.Height - 12
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		width := msg.Width - 12
		if width > 80 {
			width = 80
		}
		if width > 20 {
			m.progress.Width = width
			m.urlInput.Width = width
			m.pathInput.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.handle != nil {
				m.handle.Cancel()
			}
			return m, tea.Quit
		}

		switch m.state {
		case stateForm:
			return m.updateForm(msg)

		case statePicker:
			if msg.String() == "q" {
				m.state = stateForm
				return m, nil
			}

		case stateProcessing:
			if msg.String() == "esc" && m.handle != nil {
				m.handle.Cancel()
				m.stage = "Canceling..."
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "enter", "esc":
				return m.resetForm()
			}
			return m, nil
		}

	case progressMsg:
		if msg.handle != m.handle || m.state != stateProcessing {
			return m, nil
		}
		m.stage = msg.event.Stage
		cmd := m.progress.SetPercent(float64(msg.event.Percent) / 100)
		return m, tea.Batch(cmd, waitForEvent(msg.handle))

	case conversionCompleteMsg:
		if msg.handle != m.handle {
			return m, nil
		}
		m.handle = nil
		if !msg.outcome.Succeeded() {
			m.err = msg.outcome.Err
			m.state = stateError
			return m, nil
		}
		m.result = msg.outcome.Result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	switch m.state {
	case stateForm:
		return m.updateInputs(msg)

	case statePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, dir := m.filepicker.DidSelectFile(msg); didSelect {
			m.pathInput.SetValue(outputInDirectory(dir, m.pathInput.Value()))
			m.state = stateForm
			return m, nil
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		return m.toggleFocus()
	case "ctrl+o":
		m.state = statePicker
		m.filepicker.CurrentDirectory = startDirectory(m.pathInput.Value())
		return m, m.filepicker.Init()
	case "enter":
		return m.startConversion()
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusURL {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusURL {
		m.focus = focusPath
		m.urlInput.Blur()
		return m, m.pathInput.Focus()
	}
	m.focus = focusURL
	m.pathInput.Blur()
	return m, m.urlInput.Focus()
}

// startConversion validates the form and hands the request to a runner. The
// form stays disabled until the task reports its outcome.
func (m Model) startConversion() (tea.Model, tea.Cmd) {
	req := types.ConversionRequest{
		URL:        strings.TrimSpace(m.urlInput.Value()),
		OutputPath: strings.TrimSpace(m.pathInput.Value()),
	}

	if req.URL == "" {
		m.validation = msgMissingURL
		return m, nil
	}
	if req.OutputPath == "" {
		m.validation = msgMissingOutput
		return m, nil
	}

	m.validation = ""
	m.err = nil
	m.result = nil
	m.stage = ""
	m.urlInput.Blur()
	m.pathInput.Blur()

	m.handle = runner.Start(m.ctx, m.newTask(), req)
	m.state = stateProcessing

	return m, tea.Batch(waitForEvent(m.handle), m.progress.SetPercent(0))
}

func (m Model) resetForm() (tea.Model, tea.Cmd) {
	m.state = stateForm
	m.focus = focusURL
	m.pathInput.Blur()
	return m, m.urlInput.Focus()
}

// waitForEvent blocks on the next progress event. Once the events channel is
// closed it reads the single terminal outcome instead.
func waitForEvent(h *runner.Handle) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-h.Events()
		if !ok {
			return conversionCompleteMsg{handle: h, outcome: <-h.Outcome()}
		}
		return progressMsg{handle: h, event: ev}
	}
}

// EnsureXLSX appends the spreadsheet extension when path lacks it.
func EnsureXLSX(path string) string {
	if strings.EqualFold(filepath.Ext(path), xlsxExt) {
		return path
	}
	return path + xlsxExt
}

func outputInDirectory(dir, current string) string {
	name := filepath.Base(strings.TrimSpace(current))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = config.DefaultOutputName
	}
	return EnsureXLSX(filepath.Join(dir, name))
}

func startDirectory(outputPath string) string {
	dir := filepath.Dir(strings.TrimSpace(outputPath))
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
	}
	wd, _ := os.Getwd()
	return wd
}

func (m Model) View() string {
	switch m.state {
	case stateForm:
		return m.viewForm()
	case statePicker:
		return m.viewPicker()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewForm() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("JSON to Excel"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Download a JSON API response and save it as a spreadsheet"))
	s.WriteString("\n\n")

	s.WriteString(m.label("API URL", focusURL))
	s.WriteString("\n")
	s.WriteString(m.urlInput.View())
	s.WriteString("\n\n")
	s.WriteString(m.label("Output file ("+xlsxExt+")", focusPath))
	s.WriteString("\n")
	s.WriteString(m.pathInput.View())
	s.WriteString("\n")

	if m.validation != "" {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(m.validation))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("tab: switch field • ctrl+o: choose folder • enter: generate • esc: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) label(text string, field int) string {
	if m.focus == field {
		return FocusedStyle.Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}

func (m Model) viewPicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Choose an output folder"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(m.filepicker.CurrentDirectory))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: select folder • ←/→: navigate • q: back"))

	return s.String()
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Generating spreadsheet..."))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())
	s.WriteString("\n\n")
	s.WriteString(StageStyle.Render(m.stage))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("esc: cancel"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(SuccessStyle.Render("✓ " + msgSuccess))
	s.WriteString("\n\n")

	// Truncate the path if it is too long
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	outputPath := m.result.OutputFile
	if len(outputPath) > maxPathLen {
		outputPath = "..." + outputPath[len(outputPath)-maxPathLen+3:]
	}

	s.WriteString(fmt.Sprintf("Output:  %s\n", outputPath))
	s.WriteString(fmt.Sprintf("Rows:    %d\n", m.result.Rows))
	s.WriteString(fmt.Sprintf("Columns: %d\n", len(m.result.Columns)))
	s.WriteString(HelpStyle.Render("enter: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(msgFailure)
	s.WriteString("\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: back • q: quit"))

	return ErrorBoxStyle.Render(s.String())
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, cfg config.Config) error {
	p := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
