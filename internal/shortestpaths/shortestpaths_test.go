package shortestpaths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcatalogue/internal/graph"
)

func TestDiagonalIsZeroWithNoPrevEdge(t *testing.T) {
	g := graph.New[float64](3)
	g.AddEdge(0, 1, 5)

	table := Build(g)
	for i := 0; i < 3; i++ {
		e, ok := table.Get(i, i)
		require.True(t, ok)
		assert.Equal(t, 0.0, e.Weight)
		assert.False(t, e.HasEdge)
	}
}

func TestUnreachableTargetIsAbsent(t *testing.T) {
	g := graph.New[float64](3)
	g.AddEdge(0, 1, 5)

	table := Build(g)
	_, ok := table.Get(1, 0)
	assert.False(t, ok)
	_, ok = table.Get(2, 0)
	assert.False(t, ok)
}

func TestShortestPathPrefersLowerWeight(t *testing.T) {
	g := graph.New[float64](3)
	direct := g.AddEdge(0, 2, 10)
	g.AddEdge(0, 1, 3)
	g.AddEdge(1, 2, 3)

	table := Build(g)
	weight, edges, ok := BuildRoute(table, g, 0, 2)
	require.True(t, ok)
	assert.Equal(t, 6.0, weight)
	require.Len(t, edges, 2)
	assert.NotEqual(t, direct, edges[0])
}

func TestTieBreakPrefersFirstDiscoveredEdge(t *testing.T) {
	g := graph.New[float64](2)
	first := g.AddEdge(0, 1, 5)
	g.AddEdge(0, 1, 5)

	table := Build(g)
	_, edges, ok := BuildRoute(table, g, 0, 1)
	require.True(t, ok)
	require.Len(t, edges, 1)
	assert.Equal(t, first, edges[0])
}

func TestBuildRouteSameSourceAndTarget(t *testing.T) {
	g := graph.New[float64](2)
	g.AddEdge(0, 1, 5)

	table := Build(g)
	weight, edges, ok := BuildRoute(table, g, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, weight)
	assert.Empty(t, edges)
}
