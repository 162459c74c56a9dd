// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/bmilog/internal/model"
	"github.com/verte-zerg/bmilog/internal/report"
)

const (
	tabOverview = iota
	tabTable
)

const plotHeight = 10

var (
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	rowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

var tabNames = [...]string{"Overview", "Table"}

func tabStyle(active bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true)
	if active {
		return style.Bold(true).
			Foreground(lipgloss.Color("#F0F0F0")).
			BorderForeground(lipgloss.Color("#C89A3A"))
	}
	return style.Foreground(lipgloss.Color("#B0B0B0")).BorderForeground(lipgloss.Color("#4A4A4A"))
}

// Reporter builds history reports.
type Reporter interface {
	Report(ctx context.Context, cfg model.ReportConfig) (report.Report, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	reporter Reporter
	cfg      model.ReportConfig
	report   report.Report
	loadErr  string

	tab      int
	overview viewport.Model
	table    table.Model

	width  int
	height int

	// Settings form.
	editing     bool
	nameInput   textinput.Model
	windowInput textinput.Model
	formErr     string
}

// NewModel constructs a history UI model.
func NewModel(reporter Reporter, cfg model.ReportConfig) *Model {
	cfg.Window = max(cfg.Window, 1)
	m := &Model{
		reporter: reporter,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		table: table.New(
			table.WithColumns([]table.Column{
				{Title: "#", Width: 4},
				{Title: "Date", Width: 10},
				{Title: "BMI", Width: 6},
				{Title: "Category", Width: 13},
			}),
			table.WithStyles(tableStyles()),
		),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m, m.updateForm(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		m.switchTab(-1)
		return tea.ClearScreen
	case "right", "l":
		m.switchTab(1)
		return tea.ClearScreen
	case "=", "-":
		if msg.String() == "=" {
			m.cfg.Window = nextWindow(m.cfg.Window)
		} else {
			m.cfg.Window = prevWindow(m.cfg.Window)
		}
		m.reload()
		return nil
	case "/":
		return m.openForm()
	case "g", "home":
		m.jump(true)
		return nil
	case "G", "end":
		m.jump(false)
		return nil
	}
	var cmd tea.Cmd
	if m.tab == tabTable {
		m.table, cmd = m.table.Update(msg)
	} else {
		m.overview, cmd = m.overview.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	footer := m.footer()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		frame(m.body(), m.width, m.bodyHeight()),
		frame(footer, m.width, lipgloss.Height(footer)),
	)
}

// bodyHeight is whatever the header and footer leave over.
func (m *Model) bodyHeight() int {
	return max(1, m.height-lipgloss.Height(m.header())-lipgloss.Height(m.footer()))
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight()
	m.overview.Width, m.overview.Height = m.width, h
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, h-1))
	m.overview.SetContent(m.overviewContent())
}

func (m *Model) switchTab(delta int) {
	m.tab = (m.tab + delta + len(tabNames)) % len(tabNames)
	if m.tab == tabTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) jump(top bool) {
	switch {
	case m.tab == tabTable && top:
		m.table.GotoTop()
	case m.tab == tabTable:
		m.table.GotoBottom()
	case top:
		m.overview.GotoTop()
	default:
		m.overview.GotoBottom()
	}
}

func (m *Model) header() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		tabs[i] = tabStyle(i == m.tab).Render(name)
	}
	status := fmt.Sprintf("%s  window %d  %d entries", m.cfg.Name, m.cfg.Window, len(m.report.Points))
	if m.cfg.Name == "" {
		status = fmt.Sprintf("no name  window %d", m.cfg.Window)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return frame(row+"\n"+mutedStyle.Render(status), m.width, lipgloss.Height(row)+1)
}

func (m *Model) footer() string {
	if m.editing {
		return mutedStyle.Render("tab: switch field  enter: apply  esc: cancel")
	}
	help := mutedStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.loadErr != "" {
		help += "\n" + errorStyle.Render(m.loadErr)
	}
	return help
}

func (m *Model) body() string {
	switch {
	case m.editing:
		lines := []string{"Settings", m.nameInput.View(), m.windowInput.View()}
		if m.formErr != "" {
			lines = append(lines, errorStyle.Render(m.formErr))
		}
		return strings.Join(lines, "\n")
	case m.tab == tabTable && len(m.report.Points) == 0:
		return noDataMessage(m.cfg.Name)
	case m.tab == tabTable:
		return rowStyle.Render(m.table.View())
	}
	return m.overview.View()
}

// reload fetches the report for the current settings and refreshes both tabs.
func (m *Model) reload() {
	r, err := m.reporter.Report(context.Background(), m.cfg)
	m.loadErr = ""
	if err != nil {
		m.loadErr = err.Error()
		r = report.Report{Name: m.cfg.Name}
	}
	m.report = r
	m.table.SetRows(buildRows(r.Points))
	m.table.GotoTop()
	m.overview.SetContent(m.overviewContent())
	m.resize()
}

func (m *Model) overviewContent() string {
	if m.loadErr != "" {
		return "Failed to load history."
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	return renderOverview(m.report, width)
}

func renderOverview(r report.Report, width int) string {
	if len(r.Points) == 0 {
		return noDataMessage(r.Name)
	}
	cards := renderSummaryCards(r.Summary, width)
	var buf bytes.Buffer
	if err := report.RenderTrend(&buf, r, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func noDataMessage(name string) string {
	if name == "" {
		return "No name selected. Press / to choose one."
	}
	return fmt.Sprintf("No data found for %s.", name)
}

func renderSummaryCards(s report.Summary, width int) string {
	latest := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex())).Bold(true).
		Render(fmt.Sprintf("%.1f %s", s.Latest.BMI, s.Category))
	cards := []string{
		metricCard("Entries", strconv.Itoa(s.Count)),
		cardStyle.Render(cardTitleStyle.Render("Latest") + "\n" + latest),
		metricCard("Change", fmt.Sprintf("%+.1f", s.Change)),
		metricCard("Min", fmt.Sprintf("%.1f", s.Min)),
		metricCard("Avg", fmt.Sprintf("%.1f", s.Mean)),
		metricCard("Max", fmt.Sprintf("%.1f", s.Max)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildRows(points []model.Point) []table.Row {
	rows := make([]table.Row, 0, len(points))
	for i, c := range report.Categorize(points) {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			c.Date,
			fmt.Sprintf("%.1f", c.BMI),
			string(c.Category),
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	return styles
}

func newInput(prompt, value string, width int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.SetValue(value)
	input.Width = max(10, width-lipgloss.Width(prompt)-2)
	return input
}

func (m *Model) openForm() tea.Cmd {
	m.editing = true
	m.formErr = ""
	m.nameInput = newInput("Name: ", m.cfg.Name, m.width)
	m.windowInput = newInput("Moving avg window: ", strconv.Itoa(m.cfg.Window), m.width)
	return m.nameInput.Focus()
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		return nil
	case tea.KeyEnter:
		cfg, err := m.formConfig()
		if err != nil {
			m.formErr = err.Error()
			return nil
		}
		m.editing = false
		m.cfg = cfg
		m.reload()
		return nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.nameInput.Focused() {
			m.nameInput.Blur()
			return m.windowInput.Focus()
		}
		m.windowInput.Blur()
		return m.nameInput.Focus()
	}
	var cmd tea.Cmd
	if m.nameInput.Focused() {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.windowInput, cmd = m.windowInput.Update(msg)
	}
	return cmd
}

// formConfig validates the settings form. An empty window means 1.
func (m *Model) formConfig() (model.ReportConfig, error) {
	cfg := model.ReportConfig{Name: strings.TrimSpace(m.nameInput.Value()), Window: 1}
	if cfg.Name == "" {
		return cfg, errors.New("name is required")
	}
	if raw := strings.TrimSpace(m.windowInput.Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cfg, errors.New("invalid moving avg window (use integer >= 1)")
		}
		cfg.Window = n
	}
	return cfg, nil
}

// nextWindow steps by one up to 5, then by multiples of 5.
func nextWindow(n int) int {
	if n < 5 {
		return n + 1
	}
	return (n/5 + 1) * 5
}

func prevWindow(n int) int {
	switch {
	case n <= 5:
		return max(1, n-1)
	case n%5 == 0:
		return n - 5
	}
	return n / 5 * 5
}

// frame clips s to width columns and height lines and pads the rest with blanks.
func frame(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	clipped := lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, clipped)
}
