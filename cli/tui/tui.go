package tui

import (
	"fmt"

	"github.com/justapithecus/faultline/report"
)

// View type identifiers for TUI-capable commands.
const (
	ViewReport   = "report"
	ViewHotspots = "hotspots"
)

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	r, ok := data.(*report.Report)
	if !ok {
		return fmt.Errorf("TUI view %s expects a report, got %T", viewType, data)
	}
	return RunReportTUI(viewType, r)
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only analyze and hotspots support TUI; everything else renders flat.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{
		ViewReport,
		ViewHotspots,
	}
}
