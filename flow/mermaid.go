package flow

import (
	"fmt"
	"strings"

	"github.com/justapithecus/faultline/matrix"
)

// Mermaid wraps the flow body in a fenced Mermaid sankey-beta block
// ready to paste into markdown. An empty matrix renders a placeholder
// block instead of an empty diagram.
func Mermaid(m matrix.Matrix, opts Options) string {
	if len(m) == 0 {
		return "```mermaid\nsankey-beta\n\nNo transitions recorded\n```"
	}

	lines := []string{
		"```mermaid",
		"---",
		"config:",
		"  sankey:",
		"    showValues: true",
		"---",
		"sankey-beta",
		"",
	}
	for _, f := range Flows(m, opts) {
		lines = append(lines, fmt.Sprintf("%s,%s,%d", f.Source, f.Target, f.Value))
	}
	lines = append(lines, "```")
	return strings.Join(lines, "\n")
}
