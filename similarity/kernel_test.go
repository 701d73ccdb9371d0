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

package similarity

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(edges ...[2]string) *graph.Graph {
	g := graph.New()
	g.AddNode(graph.Node{ID: graph.RootNodeID, Name: graph.RootNodeID, Type: graph.NodeTypeRoot})
	for _, e := range edges {
		g.AddNode(graph.Node{ID: e[1], Name: e[1], Type: graph.NodeTypeDependency})
		g.AddEdge(e[0], e[1], graph.EdgeTypeDependsOn)
	}
	return g
}

func TestKernel(t *testing.T) {
	t.Run("should count common labels in the first iteration", func(t *testing.T) {
		g1 := newGraph([2]string{"root", "a"}, [2]string{"root", "b"})
		g2 := newGraph([2]string{"root", "a"}, [2]string{"root", "c"})

		// labels root and a are shared, no neighborhood is
		assert.Equal(t, 2, Kernel(g1, g2, 1))
	})

	t.Run("should count refined labels in further iterations", func(t *testing.T) {
		g1 := newGraph([2]string{"root", "a"})
		g2 := newGraph([2]string{"root", "a"})

		// iteration 1: root, a. iteration 2: root_a, a_
		assert.Equal(t, 4, Kernel(g1, g2, 2))
	})

	t.Run("should use the type and id as fallback labels", func(t *testing.T) {
		g1 := graph.New()
		g1.AddNode(graph.Node{ID: "x", Type: graph.NodeTypeDependency})
		g1.AddNode(graph.Node{ID: "y"})
		g2 := graph.New()
		g2.AddNode(graph.Node{ID: "z", Type: graph.NodeTypeDependency})
		g2.AddNode(graph.Node{ID: "y"})

		assert.Equal(t, 2, Kernel(g1, g2, 1))
	})

	t.Run("should label unnamed components of a built graph by their type", func(t *testing.T) {
		build := func(purl string) *graph.Graph {
			bom := &cdx.BOM{
				Metadata:   &cdx.Metadata{Component: &cdx.Component{BOMRef: "app", Name: "app"}},
				Components: &[]cdx.Component{{BOMRef: "c", PackageURL: purl}},
			}
			g, _, err := graph.NewBuilder(slog.New(slog.NewTextHandler(io.Discard, nil))).Build(bom)
			require.NoError(t, err)
			return g
		}
		g1 := build("pkg:pypi/c@1")
		g2 := build("pkg:pypi/d@1")

		assert.Equal(t, "disconnected_dependency", initialLabels(g1)["pkg:pypi/c@1"])
		// iteration 1: root, disconnected_dependency. iteration 2: root_disconnected_dependency, disconnected_dependency_
		assert.Equal(t, 4, Kernel(g1, g2, 2))
		assert.InDelta(t, 1.0, NormalizedKernel(g1, g2, 2), 1e-12)
	})

	t.Run("should be symmetric", func(t *testing.T) {
		g1 := newGraph([2]string{"root", "a"}, [2]string{"a", "b"}, [2]string{"root", "c"})
		g2 := newGraph([2]string{"root", "a"}, [2]string{"root", "b"}, [2]string{"b", "c"})

		assert.Equal(t, Kernel(g1, g2, DefaultIterations), Kernel(g2, g1, DefaultIterations))
		assert.InDelta(t, NormalizedKernel(g1, g2, DefaultIterations), NormalizedKernel(g2, g1, DefaultIterations), 1e-12)
	})

	t.Run("self similarity should normalize to 1", func(t *testing.T) {
		graphs := []*graph.Graph{
			newGraph(),
			newGraph([2]string{"root", "a"}),
			newGraph([2]string{"root", "a"}, [2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"root", "b"}),
		}
		for _, g := range graphs {
			assert.InDelta(t, 1.0, NormalizedKernel(g, g, DefaultIterations), 1e-12)
		}
	})

	t.Run("should stay below 1 for different graphs", func(t *testing.T) {
		g1 := newGraph([2]string{"root", "a"}, [2]string{"a", "b"})
		g2 := newGraph([2]string{"root", "a"}, [2]string{"root", "b"})

		score := NormalizedKernel(g1, g2, DefaultIterations)
		assert.Greater(t, score, 0.0)
		assert.Less(t, score, 1.0)
	})

	t.Run("should return 0 for empty graphs", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizedKernel(graph.New(), newGraph(), DefaultIterations))
	})
}

func TestPairwise(t *testing.T) {
	graphs := map[string]*graph.Graph{
		"trivy":  newGraph([2]string{"root", "a"}),
		"cdxgen": newGraph([2]string{"root", "a"}),
		"syft":   newGraph([2]string{"root", "b"}),
	}

	results := Pairwise("repo", graphs, DefaultIterations)

	require.Len(t, results, 3)
	assert.Equal(t, "cdxgen", results[0].Tool1)
	assert.Equal(t, "syft", results[0].Tool2)
	assert.Equal(t, "cdxgen", results[1].Tool1)
	assert.Equal(t, "trivy", results[1].Tool2)
	assert.InDelta(t, 1.0, results[1].NormalizedKernel, 1e-12)
	assert.Equal(t, "repo", results[2].Repo)
}

func TestCSV(t *testing.T) {
	results := []PairResult{
		{Repo: "repo", Tool1: "cdxgen", Tool2: "syft", KernelValue: 3, NormalizedKernel: 0.5},
		{Repo: "repo", Tool1: "cdxgen", Tool2: "trivy", KernelValue: 6, NormalizedKernel: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))
	assert.Equal(t, "repo,tool1,tool2,kernel_value,normalized_kernel\nrepo,cdxgen,syft,3,0.5\nrepo,cdxgen,trivy,6,1\n", buf.String())

	read, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, results, read)
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]PairResult{
		{NormalizedKernel: 0.5},
		{NormalizedKernel: 1},
		{NormalizedKernel: 0.75},
	})

	assert.InDelta(t, 0.75, summary.Mean, 1e-12)
	assert.InDelta(t, 0.75, summary.Median, 1e-12)
	assert.InDelta(t, 0.25, summary.Std, 1e-12)
}
