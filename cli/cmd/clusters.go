package cmd

import (
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/faultline/cli/render"
	"github.com/justapithecus/faultline/report"
	"github.com/justapithecus/faultline/types"
)

// ClustersCommand returns the clusters command.
func ClustersCommand() *cli.Command {
	return &cli.Command{
		Name:   "clusters",
		Usage:  "Group failures across all edges by shared error prefix",
		Flags:  append(EventFlags(), ReadOnlyFlags()...),
		Action: clustersAction,
	}
}

// clusterRow summarizes one error cluster: the shared key, how many
// failures share it, and the edges it touches.
type clusterRow struct {
	ErrorKey string   `json:"error_key"`
	Count    int      `json:"count"`
	Edges    []string `json:"edges"`
}

func clustersAction(c *cli.Context) error {
	events, err := loadEvents(c)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for clusters", 1)
	}
	return r.Render(clusterRows(report.ClusterErrors(events)))
}

// clusterRows flattens clusters into rows sorted by count descending,
// ties broken by error key ascending.
func clusterRows(clusters map[string][]types.TransitionEvent) []clusterRow {
	rows := make([]clusterRow, 0, len(clusters))
	for key, grouped := range clusters {
		edges := report.AffectedEdges(grouped)
		names := make([]string, len(edges))
		for i, edge := range edges {
			names[i] = edge.String()
		}
		rows = append(rows, clusterRow{
			ErrorKey: key,
			Count:    len(grouped),
			Edges:    names,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].ErrorKey < rows[j].ErrorKey
	})
	return rows
}
