package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

func testReport(t *testing.T) *report.Report {
	t.Helper()

	events := []types.TransitionEvent{
		{FromState: "Parse", ToState: "Exec", Status: types.StatusFailure, Error: "timeout"},
		{FromState: "Parse", ToState: "Exec", Status: types.StatusFailure, Error: "timeout"},
		{FromState: "Parse", ToState: "Exec", Status: types.StatusSuccess, DurationMs: types.DurationPtr(500)},
		{FromState: "START", ToState: "Parse", Status: types.StatusSuccess},
	}
	r, err := report.Build(events, report.Options{SlowThresholdMs: 100})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return r
}

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"report", true},
		{"hotspots", true},

		// Flat-only commands never get a TUI.
		{"rates", false},
		{"slow", false},
		{"clusters", false},
		{"flow", false},
		{"version", false},

		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()

	if len(views) != 2 {
		t.Errorf("SupportedTUIViews() returned %d views, expected 2", len(views))
	}

	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	err := Run("rates", nil)
	if err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func TestRun_WrongDataType(t *testing.T) {
	err := Run(ViewReport, "not a report")
	if err == nil {
		t.Error("Expected error for non-report data")
	}
}

func TestReportModel_View_Summary(t *testing.T) {
	r := testReport(t)
	view := RenderReportStatic(ViewReport, r)

	for _, want := range []string{"Transition Failure Report", "Transitions", "Failures", "Hotspots"} {
		if !strings.Contains(view, want) {
			t.Errorf("report view missing %q", want)
		}
	}
	if !strings.Contains(view, "Parse") {
		t.Error("report view should name the hotspot edge")
	}
	if !strings.Contains(view, "timeout") {
		t.Error("report view should include top error samples")
	}
}

func TestReportModel_View_HotspotsOnly(t *testing.T) {
	r := testReport(t)
	view := RenderReportStatic(ViewHotspots, r)

	if !strings.Contains(view, "Failure Hotspots") {
		t.Error("hotspots view missing title")
	}
	if strings.Contains(view, "Slow Transitions") {
		t.Error("hotspots view should not include the slow section")
	}
}

func TestReportModel_TabCyclesSections(t *testing.T) {
	m := NewReportModel(ViewReport, testReport(t))

	tab := tea.KeyMsg{Type: tea.KeyTab}
	next, _ := m.Update(tab)
	m = next.(ReportModel)
	if !strings.Contains(m.View(), "Slow Transitions") {
		t.Error("first tab should show the slow section")
	}

	next, _ = m.Update(tab)
	m = next.(ReportModel)
	if !strings.Contains(m.View(), "Regressions") {
		t.Error("second tab should show the regression section")
	}

	next, _ = m.Update(tab)
	m = next.(ReportModel)
	if !strings.Contains(m.View(), "Hotspots") {
		t.Error("third tab should wrap back to hotspots")
	}
}

func TestReportModel_QuitClearsView(t *testing.T) {
	m := NewReportModel(ViewReport, testReport(t))

	quit := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	next, cmd := m.Update(quit)
	m = next.(ReportModel)

	if cmd == nil {
		t.Fatal("quit key should produce a tea.Quit command")
	}
	if m.View() != "" {
		t.Error("view after quit should be empty")
	}
}
