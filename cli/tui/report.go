package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// Sections of the report view, cycled with tab.
const (
	sectionHotspots = iota
	sectionSlow
	sectionRegressions
	sectionCount
)

// ReportModel is a Bubble Tea model for analysis report views.
type ReportModel struct {
	viewType string
	report   *report.Report
	section  int
	width    int
	height   int
	quitting bool
}

// NewReportModel creates a new report model.
func NewReportModel(viewType string, r *report.Report) ReportModel {
	return ReportModel{
		viewType: viewType,
		report:   r,
	}
}

// Init implements tea.Model.
func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.NextSection):
			m.section = (m.section + 1) % sectionCount
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m ReportModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewReport:
		content = m.renderReport()
	case ViewHotspots:
		content = m.renderHotspotsView()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press tab to switch section, q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m ReportModel) renderReport() string {
	var b strings.Builder

	title := "Transition Failure Report"
	if m.report.Workflow != "" {
		title += ": " + m.report.Workflow
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Transitions", fmt.Sprintf("%d", m.report.TotalTransitions), highlightColor),
		m.renderStatBox("Failures", fmt.Sprintf("%d", m.report.TotalFailures), errorColor),
		m.renderStatBox("Failure Rate", fmt.Sprintf("%.1f%%", m.report.FailureRate*100), rateColor(m.report.FailureRate)),
		m.renderStatBox("Hotspots", fmt.Sprintf("%d", len(m.report.Hotspots)), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	switch m.section {
	case sectionSlow:
		b.WriteString(m.renderSlowSection())
	case sectionRegressions:
		b.WriteString(m.renderRegressionSection())
	default:
		b.WriteString(m.renderHotspotSection())
	}

	return b.String()
}

func (m ReportModel) renderHotspotsView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Failure Hotspots"))
	b.WriteString("\n\n")
	b.WriteString(m.renderHotspotSection())
	return b.String()
}

func (m ReportModel) renderHotspotSection() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Hotspots"))
	b.WriteString("\n")

	if len(m.report.Hotspots) == 0 {
		b.WriteString(ValueStyle.Render("No hotspots at the current floor."))
		return b.String()
	}

	for _, h := range m.report.Hotspots {
		edge := types.Edge{From: h.From, To: h.To}.String()
		line := fmt.Sprintf("%s %s",
			LabelStyle.Render(edge),
			RateStyle(h.FailureRate).Render(
				fmt.Sprintf("%d failures (%.1f%%)", h.FailureCount, h.FailureRate*100)))
		b.WriteString(line)
		b.WriteString("\n")
		for _, sample := range h.TopErrors {
			b.WriteString(HelpStyle.Render(fmt.Sprintf("    %dx %s", sample.Count, sample.Error)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m ReportModel) renderSlowSection() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Slow Transitions"))
	b.WriteString("\n")

	if len(m.report.SlowTransitions) == 0 {
		b.WriteString(ValueStyle.Render("No slow transitions (or no threshold set)."))
		return b.String()
	}

	for _, s := range m.report.SlowTransitions {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render(s.Edge.String()),
			WarningStyle.Render(fmt.Sprintf("%.1fms avg over %d samples", s.AvgDurationMs, s.SampleCount))))
	}
	return b.String()
}

func (m ReportModel) renderRegressionSection() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Regressions vs Baseline"))
	b.WriteString("\n")

	if len(m.report.Regressions) == 0 {
		b.WriteString(ValueStyle.Render("No regressions (or no baseline supplied)."))
		return b.String()
	}

	for _, r := range m.report.Regressions {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render(r.Edge.String()),
			ErrorStyle.Render(fmt.Sprintf("%.1f%% -> %.1f%% (+%.1f)", r.BaselineRate, r.CurrentRate, r.Delta))))
	}
	return b.String()
}

func (m ReportModel) renderStatBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

func rateColor(rate float64) lipgloss.Color {
	switch {
	case rate < 0.05:
		return successColor
	case rate < 0.25:
		return warningColor
	default:
		return errorColor
	}
}

// keyMap defines key bindings.
type keyMap struct {
	Quit        key.Binding
	NextSection key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	NextSection: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next section"),
	),
}

// RunReportTUI runs the report TUI.
func RunReportTUI(viewType string, r *report.Report) error {
	model := NewReportModel(viewType, r)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderReportStatic renders a report view without full TUI (for fallback).
func RenderReportStatic(viewType string, r *report.Report) string {
	model := NewReportModel(viewType, r)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
