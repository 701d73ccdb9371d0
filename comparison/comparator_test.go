// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package comparison

import (
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func toolGraph(tool string, deps ...string) ToolGraph {
	g := graph.New()
	g.AddNode(graph.Node{ID: graph.RootNodeID, Type: graph.NodeTypeRoot})
	for _, dep := range deps {
		g.AddEdge(graph.RootNodeID, dep, graph.EdgeTypeDependsOn)
	}
	return ToolGraph{Tool: tool, Graph: g}
}

func threeTools() []ToolGraph {
	return []ToolGraph{
		toolGraph("trivy", "a", "b", "c"),
		toolGraph("syft", "a", "b", "d"),
		toolGraph("cdxgen", "a", "e"),
	}
}

func TestCompare(t *testing.T) {
	comparator := NewComparator(discardLogger)

	t.Run("should find common and missing nodes", func(t *testing.T) {
		res, err := comparator.Compare("repo", threeTools(), 3)
		require.NoError(t, err)

		assert.Equal(t, []string{"cdxgen", "syft", "trivy"}, res.Tools)
		assert.Equal(t, map[string][]string{
			"a":    {"cdxgen", "syft", "trivy"},
			"root": {"cdxgen", "syft", "trivy"},
		}, res.Common)
		assert.Equal(t, map[string][]string{
			"b": {"cdxgen"},
			"c": {"cdxgen", "syft"},
			"d": {"cdxgen", "trivy"},
			"e": {"syft", "trivy"},
		}, res.Missing)
		assert.Equal(t, 6, res.TotalDependencies())
		assert.Equal(t, map[string]int{"trivy": 4, "syft": 4, "cdxgen": 3}, res.NodeCounts)
	})

	t.Run("should compare every pair once", func(t *testing.T) {
		res, err := comparator.Compare("repo", threeTools(), 3)
		require.NoError(t, err)

		require.Len(t, res.Pairwise, 3)
		p := res.Pairwise[1]
		assert.Equal(t, "cdxgen", p.Tool1)
		assert.Equal(t, "trivy", p.Tool2)
		assert.Equal(t, []string{"a", "root"}, p.Common)
		assert.Equal(t, []string{"e"}, p.OnlyInTool1)
		assert.Equal(t, []string{"b", "c"}, p.OnlyInTool2)
	})

	t.Run("pairwise comparisons should be symmetric and partition the symmetric difference", func(t *testing.T) {
		graphs := threeTools()
		for _, pair := range utils.Pairs(graphs) {
			ab, err := comparator.Compare("repo", []ToolGraph{pair[0], pair[1]}, 2)
			require.NoError(t, err)
			ba, err := comparator.Compare("repo", []ToolGraph{pair[1], pair[0]}, 2)
			require.NoError(t, err)
			assert.Equal(t, len(ab.Pairwise[0].Common), len(ba.Pairwise[0].Common))

			p := ab.Pairwise[0]
			a := utils.NewSet(p.OnlyInTool1...)
			b := utils.NewSet(p.OnlyInTool2...)
			assert.Empty(t, a.Intersect(b))

			setA := utils.NewSet(pair[0].Graph.NodeIDs()...)
			setB := utils.NewSet(pair[1].Graph.NodeIDs()...)
			symmetricDifference := setA.Union(setB).Difference(setA.Intersect(setB))
			assert.Equal(t, symmetricDifference.Sorted(), a.Union(b).Sorted())
		}
	})

	t.Run("should not depend on the input order", func(t *testing.T) {
		graphs := threeTools()
		first, err := comparator.Compare("repo", graphs, 3)
		require.NoError(t, err)

		slices.Reverse(graphs)
		second, err := comparator.Compare("repo", graphs, 3)
		require.NoError(t, err)

		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)
		secondJSON, err := json.Marshal(second)
		require.NoError(t, err)
		assert.JSONEq(t, string(firstJSON), string(secondJSON))
	})

	t.Run("should return an error if there are not enough graphs", func(t *testing.T) {
		_, err := comparator.Compare("repo", threeTools()[:2], 3)
		assert.ErrorIs(t, err, ErrInsufficientGraphs)

		_, err = comparator.Compare("repo", threeTools()[:1], 0)
		assert.ErrorIs(t, err, ErrInsufficientGraphs)
	})
}

func TestReport(t *testing.T) {
	res, err := NewComparator(discardLogger).Compare("repo", threeTools(), 3)
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "repo", raw["repository"])
	overall := raw["statistics"].(map[string]any)["overall"].(map[string]any)
	assert.Equal(t, float64(6), overall["total_dependencies"])
	assert.Equal(t, map[string]any{"count": float64(2), "percentage": 33.3}, overall["common_dependencies"])
	assert.Equal(t, map[string]any{"count": float64(4), "percentage": 66.7}, overall["missing_dependencies"])

	toolSpecific := raw["statistics"].(map[string]any)["tool_specific"].(map[string]any)
	assert.Equal(t, float64(3), toolSpecific["cdxgen"].(map[string]any)["count"])

	pairwise := raw["pairwise_comparisons"].(map[string]any)
	assert.Empty(t, pairwise["trivy"])
	syftVsTrivy := pairwise["syft"].(map[string]any)["trivy"].(map[string]any)
	assert.Equal(t, float64(3), syftVsTrivy["common_dependencies"])
	assert.Equal(t, float64(1), syftVsTrivy["only_in_syft_count"])
	assert.Equal(t, float64(1), syftVsTrivy["only_in_trivy_count"])
	assert.Equal(t, []any{"d"}, syftVsTrivy["only_in_syft_list"])
	assert.Equal(t, []any{"c"}, syftVsTrivy["only_in_trivy_list"])
	assert.Equal(t, []any{"a", "b", "root"}, syftVsTrivy["common_dependencies_list"])

	assert.Equal(t, raw["pairwise_comparisons"], raw["statistics"].(map[string]any)["pairwise_comparisons"])
}

func TestFirstVsRest(t *testing.T) {
	comparator := NewComparator(discardLogger)

	t.Run("should report what the first tool missed", func(t *testing.T) {
		missed, err := comparator.FirstVsRest("", threeTools())
		require.NoError(t, err)

		assert.Equal(t, map[string][]string{
			"d": {"syft"},
			"e": {"cdxgen"},
		}, missed)
	})

	t.Run("should use the given baseline", func(t *testing.T) {
		missed, err := comparator.FirstVsRest("cdxgen", threeTools())
		require.NoError(t, err)

		assert.Equal(t, map[string][]string{
			"b": {"syft", "trivy"},
			"c": {"trivy"},
			"d": {"syft"},
		}, missed)
	})

	t.Run("should return an error for an unknown baseline", func(t *testing.T) {
		_, err := comparator.FirstVsRest("sbomgold", threeTools())
		assert.ErrorIs(t, err, ErrUnknownBaseline)
	})

	t.Run("should need at least two graphs", func(t *testing.T) {
		_, err := comparator.FirstVsRest("", threeTools()[:1])
		assert.ErrorIs(t, err, ErrInsufficientGraphs)
	})
}

func TestAllVsAll(t *testing.T) {
	comparator := NewComparator(discardLogger)

	res, err := comparator.AllVsAll(threeTools())
	require.NoError(t, err)

	require.Len(t, res, 3)
	for _, tg := range threeTools() {
		expected, err := comparator.FirstVsRest(tg.Tool, threeTools())
		require.NoError(t, err)
		assert.Equal(t, expected, res[tg.Tool])
	}
}
