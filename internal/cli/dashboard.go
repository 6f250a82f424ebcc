package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pattern-metrics/internal/observability"
)

var (
	dashboardInput  string
	dashboardWindow string
)

// Dashboard panel indices.
const (
	panelPatterns = iota
	panelTrends
	panelWindow
	panelAlerts
	panelCount
)

type dashboardModel struct {
	input       string
	window      time.Duration
	activePanel int
	width       int
	height      int

	// Data.
	report analysisReport
	alerts []alertSnapshot

	// State.
	loading bool
	err     error
}

type alertSnapshot struct {
	severity string
	message  string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	report analysisReport
	alerts []alertSnapshot
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	trendUp   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	trendDown = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	trendFlat = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(input string, window time.Duration) dashboardModel {
	return dashboardModel{
		input:       input,
		window:      window,
		activePanel: panelPatterns,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Pattern Metrics ")
	help := helpStyle.Render("tab: switch panel | r: reload | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading %s...\n\n%s", title, m.input, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	panels := []string{
		m.renderPatternsPanel(),
		m.renderTrendsPanel(),
		m.renderWindowPanel(),
		m.renderAlertsPanel(),
	}

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / panelCount
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth-4)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderPatternsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Patterns (%d)", m.report.Observations)))
	b.WriteString("\n")

	if len(m.report.PatternTypeCounts) == 0 {
		b.WriteString("  No patterns recorded.")
		return b.String()
	}

	for _, k := range sortedKeys(m.report.PatternTypeCounts) {
		b.WriteString(fmt.Sprintf("  %-16s %d\n", displayName(k), m.report.PatternTypeCounts[k]))
	}

	b.WriteString("\n  Scripts:\n")
	for _, k := range sortedKeys(m.report.ScriptTypeDistribution) {
		b.WriteString(fmt.Sprintf("  %-16s %5.1f%%\n", displayName(k), m.report.ScriptTypeDistribution[k]*100))
	}

	return b.String()
}

func (m dashboardModel) renderTrendsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Trends"))
	b.WriteString("\n")

	meta := m.report.MetaLevelProgression
	conf := m.report.ConfidenceTrends

	b.WriteString("  Meta-level\n")
	b.WriteString(fmt.Sprintf("  %-12s %.3f\n", "average", meta.Average))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "trend", renderTrend(meta.Trend)))
	b.WriteString(fmt.Sprintf("  %-12s %s .. %s\n", "range", formatOptional(meta.Min), formatOptional(meta.Max)))

	b.WriteString("\n  Confidence\n")
	b.WriteString(fmt.Sprintf("  %-12s %.3f\n", "average", conf.Average))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "trend", renderTrend(conf.Trend)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "recent", formatOptional(conf.RecentAverage)))
	b.WriteString(fmt.Sprintf("  %-12s %s", "volatility", formatOptional(conf.Volatility)))

	return b.String()
}

func (m dashboardModel) renderWindowPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Window (%s)", observability.FormatWindow(m.window))))
	b.WriteString("\n")

	wm := m.report.TimeWindowedMetrics
	if wm == nil {
		b.WriteString("  No observations in window.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-12s %d\n", "patterns", wm.PatternCount))
	b.WriteString(fmt.Sprintf("  %-12s %.3f\n", "confidence", wm.AverageConfidence))
	b.WriteString(fmt.Sprintf("  %-12s %.3f\n", "meta-level", wm.AverageMetaLevel))
	b.WriteString(fmt.Sprintf("  %-12s %.4f/s", "frequency", wm.PatternFrequency))

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func renderTrend(v float64) string {
	label := fmt.Sprintf("%+.4f", v)
	switch {
	case v > 0:
		return trendUp.Render(label)
	case v < 0:
		return trendDown.Render(label)
	default:
		return trendFlat.Render(label)
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func (m dashboardModel) loadData() tea.Msg {
	log, err := loadPatternLog(m.input)
	if err != nil {
		return dataLoadedMsg{err: err}
	}

	result := dataLoadedMsg{report: buildReport(log, m.window)}

	alerts, err := observability.NewAlertEngine(log, EventLog, AlertThresholds).Evaluate()
	if err != nil {
		return dataLoadedMsg{err: fmt.Errorf("evaluating alerts: %w", err)}
	}
	sortAlertsBySeverity(alerts)
	result.alerts = make([]alertSnapshot, 0, len(alerts))
	for _, a := range alerts {
		result.alerts = append(result.alerts, alertSnapshot{
			severity: string(a.Severity),
			message:  a.Message,
		})
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for an observation file",
	Long: `Launch an interactive terminal dashboard showing pattern counts, trends,
time-windowed metrics and alerts for an observation file.

Navigate between panels with Tab, reload the file with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dashboardInput == "" {
			return fmt.Errorf("--input is required")
		}
		window, err := resolveWindow(dashboardWindow)
		if err != nil {
			return fmt.Errorf("parsing --window: %w", err)
		}
		p := tea.NewProgram(newDashboardModel(dashboardInput, window), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardInput, "input", "", "Observation file (.jsonl, .ndjson, .json, .yaml, .yml)")
	dashboardCmd.Flags().StringVar(&dashboardWindow, "window", "", "Trailing window for time-windowed metrics (e.g. 30m, 1h, 7d)")
	registerInputCompletions(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}
