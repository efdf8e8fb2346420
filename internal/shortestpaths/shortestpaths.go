// Package shortestpaths precomputes an all-pairs shortest-path table
// over a graph.Graph[float64] and answers path reconstruction queries
// against it. The per-source relaxation loop and its priority queue are
// grounded on impactsolutionsas-passbi_core's internal/routing/astar.go
// (container/heap over a slice of search frontier entries), simplified
// to plain Dijkstra since there is no goal heuristic here — the table
// must hold every reachable target, not just one destination.
package shortestpaths

import (
	"container/heap"
	"math"

	"github.com/passbi/transitcatalogue/internal/graph"
)

// Entry is one cell of the table: the optimal weight from the row's
// source to the column's target, and the id of the last edge on that
// optimal path. Present is false for unreachable (source, target) pairs,
// which store no edge or weight.
type Entry struct {
	Weight   float64
	PrevEdge int
	HasEdge  bool // false only for the (i, i) diagonal
	Present  bool
}

// Table is the dense V×V array described in the data model: Table[i][j]
// holds the entry for shortest path i -> j.
type Table struct {
	n       int
	entries []Entry // row-major, length n*n
}

func (t *Table) at(i, j int) Entry {
	return t.entries[i*t.n+j]
}

func (t *Table) set(i, j int, e Entry) {
	t.entries[i*t.n+j] = e
}

// Get returns the table entry for (source, target) and whether it is
// present.
func (t *Table) Get(source, target int) (Entry, bool) {
	e := t.at(source, target)
	return e, e.Present
}

// VertexCount returns the table's dimension.
func (t *Table) VertexCount() int {
	return t.n
}

// Entries exposes the raw row-major backing slice for the codec, which
// needs to walk every cell in a fixed, deterministic order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// FromEntries reconstructs a Table from a row-major slice of exactly
// n*n entries, as read back by the codec.
func FromEntries(n int, entries []Entry) *Table {
	return &Table{n: n, entries: entries}
}

// frontier is one entry in the Dijkstra open set: the cost to reach
// vertex, and the index for heap bookkeeping.
type frontier struct {
	vertex int
	dist   float64
	index  int
}

type frontierQueue []*frontier

func (q frontierQueue) Len() int            { return len(q) }
func (q frontierQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q frontierQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *frontierQueue) Push(x interface{}) {
	f := x.(*frontier)
	f.index = len(*q)
	*q = append(*q, f)
}
func (q *frontierQueue) Pop() interface{} {
	old := *q
	n := len(old)
	f := old[n-1]
	old[n-1] = nil
	f.index = -1
	*q = old[:n-1]
	return f
}

// Build runs one Dijkstra per source vertex and assembles the dense
// table. Weights must be non-negative. Ties on equal-weight paths are
// broken deterministically by edge-id discovery order: incident edges
// are relaxed in the insertion order graph.Graph hands back, and a
// candidate only replaces an already-recorded distance on strict
// improvement, so the first path discovered at a given weight wins and
// stays stable across rebuilds.
func Build(g *graph.Graph[float64]) *Table {
	n := g.VertexCount()
	t := &Table{n: n, entries: make([]Entry, n*n)}

	for source := 0; source < n; source++ {
		dist := make([]float64, n)
		prevEdge := make([]int, n)
		hasEdge := make([]bool, n)
		settled := make([]bool, n)
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		dist[source] = 0

		pq := &frontierQueue{}
		heap.Init(pq)
		heap.Push(pq, &frontier{vertex: source, dist: 0})

		for pq.Len() > 0 {
			cur := heap.Pop(pq).(*frontier)
			v := cur.vertex
			if settled[v] {
				continue
			}
			if cur.dist > dist[v] {
				continue
			}
			settled[v] = true

			for _, edgeID := range g.IncidentEdges(v) {
				e := g.Edge(edgeID)
				candidate := dist[v] + e.Weight
				if candidate < dist[e.To] {
					dist[e.To] = candidate
					prevEdge[e.To] = edgeID
					hasEdge[e.To] = true
					heap.Push(pq, &frontier{vertex: e.To, dist: candidate})
				}
			}
		}

		t.set(source, source, Entry{Weight: 0, Present: true})
		for target := 0; target < n; target++ {
			if target == source {
				continue
			}
			if !settled[target] {
				continue
			}
			t.set(source, target, Entry{
				Weight:   dist[target],
				PrevEdge: prevEdge[target],
				HasEdge:  hasEdge[target],
				Present:  true,
			})
		}
	}

	return t
}

// BuildRoute walks the table from dst back to src via PrevEdge,
// collecting edge ids, then reverses them. ok is false if (src, dst)
// has no entry in the table.
func BuildRoute(t *Table, g *graph.Graph[float64], src, dst int) (weight float64, edges []int, ok bool) {
	entry, present := t.Get(src, dst)
	if !present {
		return 0, nil, false
	}
	if src == dst {
		return 0, nil, true
	}

	var rev []int
	cur := dst
	for cur != src {
		e, present := t.Get(src, cur)
		if !present || !e.HasEdge {
			return 0, nil, false
		}
		rev = append(rev, e.PrevEdge)
		cur = g.Edge(e.PrevEdge).From
	}

	edges = make([]int, len(rev))
	for i, id := range rev {
		edges[len(rev)-1-i] = id
	}
	return entry.Weight, edges, true
}
