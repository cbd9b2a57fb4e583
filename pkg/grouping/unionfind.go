package grouping

import "github.com/dd0wney/cluso-takeoff/pkg/model"

// unionFind is a disjoint-set forest with path compression and union by
// rank over component identifiers.
type unionFind struct {
	parent map[model.ComponentID]model.ComponentID
	rank   map[model.ComponentID]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[model.ComponentID]model.ComponentID),
		rank:   make(map[model.ComponentID]int),
	}
}

// add registers an element as its own singleton set.
func (u *unionFind) add(id model.ComponentID) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

// find returns the set representative, compressing the path on the way.
func (u *unionFind) find(id model.ComponentID) model.ComponentID {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		id, u.parent[id] = u.parent[id], root
	}
	return root
}

// union merges the sets containing a and b.
func (u *unionFind) union(a, b model.ComponentID) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
