package report

import (
	"sort"

	"github.com/justapithecus/faultline/types"
)

// ClusterErrors groups FAILURE events by truncated error key across
// the whole event sequence, ignoring edges. Two failures on different
// edges that share the same 50-character error prefix land in the
// same cluster. Failures without an error message produce no key and
// are skipped.
func ClusterErrors(events []types.TransitionEvent) map[string][]types.TransitionEvent {
	clusters := make(map[string][]types.TransitionEvent)
	for _, ev := range events {
		if !ev.Status.IsFailure() || ev.Error == "" {
			continue
		}
		key := types.ErrorKey(ev.Error)
		clusters[key] = append(clusters[key], ev)
	}
	return clusters
}

// AffectedEdges returns the distinct edges touched by the given
// events, sorted lexically. Summarizes a cluster's blast radius.
func AffectedEdges(events []types.TransitionEvent) []types.Edge {
	seen := make(map[types.Edge]struct{})
	for _, ev := range events {
		seen[types.Edge{From: ev.FromState, To: ev.ToState}] = struct{}{}
	}
	edges := make([]types.Edge, 0, len(seen))
	for edge := range seen {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Less(edges[j])
	})
	return edges
}
