package flow

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/justapithecus/faultline/matrix"
	"github.com/justapithecus/faultline/types"
)

const dotGraphName = "transitions"

// DOT renders the flow as a Graphviz digraph with edge volumes as
// labels. Failure volume flows to the FAIL sink node when enabled.
// Names and labels are quoted, so arbitrary state names survive a
// parse round trip through gographviz.
func DOT(m matrix.Matrix, opts Options) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", fmt.Errorf("failed to name graph: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("failed to mark graph directed: %w", err)
	}

	added := make(map[string]bool)
	addNode := func(name string) error {
		if added[name] {
			return nil
		}
		attrs := map[string]string(nil)
		if name == types.FailureSink {
			attrs = map[string]string{
				"color": strconv.Quote("red"),
				"shape": strconv.Quote("box"),
			}
		}
		if err := g.AddNode(dotGraphName, strconv.Quote(name), attrs); err != nil {
			return fmt.Errorf("failed to add node %q: %w", name, err)
		}
		added[name] = true
		return nil
	}

	for _, f := range Flows(m, opts) {
		if err := addNode(f.Source); err != nil {
			return "", err
		}
		if err := addNode(f.Target); err != nil {
			return "", err
		}
		label := map[string]string{
			"label": strconv.Quote(strconv.FormatInt(f.Value, 10)),
		}
		if err := g.AddEdge(strconv.Quote(f.Source), strconv.Quote(f.Target), true, label); err != nil {
			return "", fmt.Errorf("failed to add edge %s -> %s: %w", f.Source, f.Target, err)
		}
	}

	return g.String(), nil
}
