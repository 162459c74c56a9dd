// Package tui provides the Bubble Tea BMI entry form.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/bmilog/internal/app"
	"github.com/verte-zerg/bmilog/internal/model"
	"github.com/verte-zerg/bmilog/internal/report"
)

const (
	fieldName = iota
	fieldWeight
	fieldHeight
)

const (
	formWidth   = 36
	plotHeight  = 8
	historyHelp = "Scroll: up/down/pgup/pgdn  Close: esc/q"
)

// Tracker is the subset of app.Service the form needs.
type Tracker interface {
	Submit(ctx context.Context, name, rawWeight, rawHeight string) (app.Result, error)
	Report(ctx context.Context, cfg model.ReportConfig) (report.Report, error)
	ClearHistory(ctx context.Context, name string) error
	ToggleTheme(ctx context.Context) (model.Theme, error)
}

// Model implements the Bubble Tea entry form.
type Model struct {
	tracker Tracker
	logger  *zap.Logger
	window  int

	theme  model.Theme
	styles styles

	inputs []textinput.Model
	focus  int

	width  int
	height int

	result  *app.Result
	entries int
	errMsg  string
	status  string

	confirmClear bool
	showHistory  bool
	history      viewport.Model
}

// NewModel constructs the entry form.
func NewModel(tracker Tracker, theme model.Theme, window int, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		tracker: tracker,
		logger:  logger,
		window:  window,
		history: viewport.New(0, 0),
	}
	m.applyTheme(theme)
	m.inputs = []textinput.Model{
		newInput("Name:   ", "Enter your name"),
		newInput("Weight: ", "kg"),
		newInput("Height: ", "m or cm"),
	}
	m.setFocus(fieldName)
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 64
	input.Width = formWidth - len(prompt)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = msg.Width
		m.history.Height = maxInt(1, msg.Height-1)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.showHistory {
			return m.updateHistory(msg)
		}
		if m.confirmClear {
			return m.updateConfirm(msg)
		}
		switch msg.Type {
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyCtrlT:
			m.toggleTheme()
			return m, nil
		case tea.KeyCtrlR:
			m.openHistory()
			return m, nil
		case tea.KeyCtrlX:
			m.startClear()
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHistory {
		return m.history.View() + "\n" + m.styles.muted.Render(historyHelp)
	}
	content := m.renderForm()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderForm() string {
	sections := []string{
		m.styles.title.Render("BMI Calculator"),
		"",
		m.renderResult(),
		renderRangeBar(formWidth, m.resultValue()),
		"",
	}
	for i, input := range m.inputs {
		if i == m.focus {
			sections = append(sections, m.styles.focused.Render(input.View()))
		} else {
			sections = append(sections, input.View())
		}
	}
	sections = append(sections, "", m.renderFooter())
	return m.styles.box.Render(strings.Join(sections, "\n"))
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return m.styles.muted.Render("--\nResult")
	}
	style := categoryStyle(m.result.Color)
	return style.Render(fmt.Sprintf("%.1f\n%s", m.result.BMI, m.result.Category))
}

func (m *Model) renderFooter() string {
	var lines []string
	switch {
	case m.confirmClear:
		lines = append(lines, m.styles.error.Render(fmt.Sprintf("Clear all BMI history for %s? (y/n)", m.currentName())))
	case m.errMsg != "":
		lines = append(lines, m.styles.error.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, m.styles.status.Render(m.status))
	}
	if m.result != nil && m.entries > 0 {
		lines = append(lines, m.styles.muted.Render(fmt.Sprintf("%d measurements for %s", m.entries, m.currentName())))
	}
	lines = append(lines, m.styles.muted.Render("enter: calculate  ctrl+r: history  ctrl+x: clear"))
	lines = append(lines, m.styles.muted.Render(fmt.Sprintf("ctrl+t: theme (%s)  esc: quit", m.theme)))
	return strings.Join(lines, "\n")
}

func (m *Model) resultValue() float64 {
	if m.result == nil {
		return 0
	}
	return m.result.BMI
}

func (m *Model) currentName() string {
	return strings.TrimSpace(m.inputs[fieldName].Value())
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) submit() {
	m.status = ""
	ctx := context.Background()
	res, err := m.tracker.Submit(ctx,
		m.inputs[fieldName].Value(),
		m.inputs[fieldWeight].Value(),
		m.inputs[fieldHeight].Value())
	if err != nil {
		m.errMsg = userMessage(err)
		m.logger.Debug("submit rejected", zap.Error(err))
		return
	}
	m.errMsg = ""
	m.result = &res
	m.entries = 0
	if r, err := m.tracker.Report(ctx, model.ReportConfig{Name: m.currentName(), Window: m.window}); err == nil {
		m.entries = len(r.Points)
	} else {
		m.logger.Warn("failed to load history after submit", zap.Error(err))
	}
}

func (m *Model) toggleTheme() {
	theme, err := m.tracker.ToggleTheme(context.Background())
	if err != nil {
		m.errMsg = userMessage(err)
		return
	}
	m.applyTheme(theme)
	m.status = fmt.Sprintf("Theme set to %s.", theme)
}

func (m *Model) applyTheme(theme model.Theme) {
	m.theme = theme
	m.styles = stylesFor(theme)
}

func (m *Model) startClear() {
	if m.currentName() == "" {
		m.errMsg = "Enter a name to clear history."
		return
	}
	m.errMsg = ""
	m.confirmClear = true
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmClear = false
	if strings.ToLower(msg.String()) != "y" {
		m.status = "Clear cancelled."
		return m, nil
	}
	name := m.currentName()
	if err := m.tracker.ClearHistory(context.Background(), name); err != nil {
		m.errMsg = userMessage(err)
		return m, nil
	}
	m.result = nil
	m.entries = 0
	m.status = fmt.Sprintf("History cleared for %s.", name)
	return m, nil
}

func (m *Model) openHistory() {
	name := m.currentName()
	if name == "" {
		m.errMsg = "Enter a name to show history."
		return
	}
	r, err := m.tracker.Report(context.Background(), model.ReportConfig{Name: name, Window: m.window})
	if err != nil {
		m.errMsg = userMessage(err)
		return
	}
	if len(r.Points) == 0 {
		m.errMsg = "No data found for this user."
		return
	}
	m.errMsg = ""
	m.history.SetContent(renderHistory(r, m.width))
	m.history.GotoTop()
	m.showHistory = true
}

func (m *Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc || msg.String() == "q" {
		m.showHistory = false
		return m, nil
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func renderHistory(r report.Report, width int) string {
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := report.RenderSummary(&buf, r); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	if err := report.RenderTrend(&buf, r, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	if err := report.RenderHistoryTable(&buf, r.Points); err != nil {
		return fmt.Sprintf("Failed to render table: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func userMessage(err error) string {
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case "name":
			return "Enter your name."
		case "weight", "height":
			if strings.Contains(verr.Reason, "numeric") {
				return "Enter numeric values only."
			}
			return "Enter valid weight/height."
		}
		return verr.Error()
	}
	return fmt.Sprintf("Error: %v", err)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
