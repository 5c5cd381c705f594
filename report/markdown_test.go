package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/justapithecus/faultline/types"
)

func TestMarkdown_Empty(t *testing.T) {
	report, err := Build(nil, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := Markdown(report)
	want := "# Transition Failure Matrix\n\nNo transitions found."
	if got != want {
		t.Errorf("Markdown = %q, want %q", got, want)
	}
}

func TestMarkdown_Document(t *testing.T) {
	events := []types.TransitionEvent{
		evt("A", "B"),
		failEvt("A", "B", "boom"), failEvt("A", "B", "boom"),
		evt("B", "C"),
	}
	report, err := Build(events, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := Markdown(report)
	want := strings.Join([]string{
		"# Transition Failure Matrix\n",
		"**Total Transitions:** 4",
		"**Total Failures:** 2",
		"**Failure Rate:** 50.0%\n",
		`| From \ To | A | B | C |`,
		"|-----------|--------|--------|--------|",
		"| **A** | - | **2** | - |",
		"| **B** | - | - | - |",
		"| **C** | - | - | - |",
		"\n## Hotspots (failures >= 2)\n",
		"- A -> B: **2 failures**",
	}, "\n")
	if got != want {
		t.Errorf("Markdown mismatch:\ngot:\n%s\n\nwant:\n%s", got, want)
	}
}

func TestMarkdown_NoHotspotSectionBelowFloor(t *testing.T) {
	events := []types.TransitionEvent{
		evt("A", "B"),
		failEvt("A", "B", "once"),
	}
	report, err := Build(events, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := Markdown(report)
	if strings.Contains(got, "## Hotspots") {
		t.Errorf("hotspot section present with a single failure:\n%s", got)
	}
}

func TestMarkdown_CapsHotspotList(t *testing.T) {
	var events []types.TransitionEvent
	for i := range 12 {
		from := fmt.Sprintf("S%02d", i)
		events = append(events, failEvt(from, "T", "x"), failEvt(from, "T", "x"))
	}
	report, err := Build(events, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := Markdown(report)
	if n := strings.Count(got, "failures**"); n != markdownHotspotLimit {
		t.Errorf("hotspot lines = %d, want %d", n, markdownHotspotLimit)
	}
}
