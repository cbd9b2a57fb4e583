// Package grouping assigns connectivity-island labels: components that are
// mutually reachable through direct connections or shared fastener bundles
// end up under one stable ordinal label.
package grouping

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
)

// DefaultTraversalCap bounds the number of components the grouper will
// expand through. Malformed models with runaway connection records must
// degrade to an error, not an unbounded walk.
const DefaultTraversalCap = 250000

// ErrTraversalCap is returned when graph expansion exceeds the cap.
var ErrTraversalCap = fmt.Errorf("connectivity traversal cap exceeded")

// Grouper computes connectivity groups over a provider snapshot.
type Grouper struct {
	provider    provider.Provider
	logger      logging.Logger
	cap         int
	lastVisited int
}

// NewGrouper creates a grouper with the default traversal cap.
func NewGrouper(p provider.Provider, logger logging.Logger) *Grouper {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Grouper{provider: p, logger: logger, cap: DefaultTraversalCap}
}

// SetTraversalCap overrides the expansion bound.
func (g *Grouper) SetTraversalCap(n int) {
	if n > 0 {
		g.cap = n
	}
}

// LastVisited reports how many components the most recent Group call
// expanded through.
func (g *Grouper) LastVisited() int {
	return g.lastVisited
}

// Group partitions the requested components into connectivity islands and
// labels each island with a zero-padded ordinal. The walk may pass through
// components outside the requested set (intermediates bridging two
// requested ones), but only requested components receive labels.
//
// Per-edge lookup failures are tolerated: a missing edge degrades
// connectivity, it does not abort the grouping.
func (g *Grouper) Group(requested []model.ComponentID) (map[model.ComponentID]string, error) {
	uf := newUnionFind()
	g.lastVisited = 0

	// Expand the reachable universe breadth-first from the requested set.
	visited := make(map[model.ComponentID]bool, len(requested))
	queue := make([]model.ComponentID, 0, len(requested))
	for _, id := range requested {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
			uf.add(id)
		}
	}

	expanded := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		expanded++
		g.lastVisited = expanded
		if expanded > g.cap {
			return nil, fmt.Errorf("grouping stopped after %d components: %w", g.cap, ErrTraversalCap)
		}

		for _, neighbor := range g.neighborsOf(id) {
			uf.add(neighbor)
			uf.union(id, neighbor)
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	// Collect groups restricted to the requested set.
	groups := make(map[model.ComponentID][]model.ComponentID)
	for _, id := range requested {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	// Order groups by their smallest member.
	type island struct {
		smallest model.ComponentID
		members  []model.ComponentID
	}
	islands := make([]island, 0, len(groups))
	for _, members := range groups {
		smallest := members[0]
		for _, m := range members[1:] {
			if model.NaturalLess(string(m), string(smallest)) {
				smallest = m
			}
		}
		islands = append(islands, island{smallest: smallest, members: members})
	}
	sort.Slice(islands, func(i, j int) bool {
		return model.NaturalLess(string(islands[i].smallest), string(islands[j].smallest))
	})

	width := len(fmt.Sprintf("%d", len(islands)))
	if width < 2 {
		width = 2
	}
	labels := make(map[model.ComponentID]string, len(requested))
	for i, isl := range islands {
		label := fmt.Sprintf("%0*d", width, i+1)
		for _, m := range isl.members {
			labels[m] = label
		}
	}

	g.logger.Debug("connectivity grouping complete",
		logging.Count(len(requested)), logging.Int("groups", len(islands)))
	return labels, nil
}

// neighborsOf collects directly connected components (one lookup per port,
// symmetric by provider contract) and bundle co-members. Failed lookups on
// individual ports are skipped.
func (g *Grouper) neighborsOf(id model.ComponentID) []model.ComponentID {
	var out []model.ComponentID
	for _, port := range g.provider.Ports(id) {
		if neighbor, _, ok := g.provider.ConnectedNeighbor(id, port); ok {
			out = append(out, neighbor)
		}
	}
	out = append(out, g.provider.ConnectivityBundle(id)...)
	return out
}
