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

package analysis

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
)

const unknownType = "unknown"

type Analyzer struct {
	logger *slog.Logger
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Density is edges / (n * (n - 1)). Graphs with less than two nodes have a density of 0.
func Density(g *graph.Graph) float64 {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	return float64(g.NumEdges()) / float64(n*(n-1))
}

// DegreeCentrality returns (in + out) / (n - 1) for every node.
// A single node has a centrality of 1.
func DegreeCentrality(g *graph.Graph) map[string]float64 {
	ids := g.NodeIDs()
	res := make(map[string]float64, len(ids))
	if len(ids) == 1 {
		res[ids[0]] = 1
		return res
	}
	scale := 1 / float64(len(ids)-1)
	for _, id := range ids {
		res[id] = float64(g.Degree(id)) * scale
	}
	return res
}

func typeOf(n graph.Node) string {
	if n.Type == "" {
		return unknownType
	}
	return string(n.Type)
}

// Analyze computes the structural metrics of the graph.
func (a *Analyzer) Analyze(g *graph.Graph, name string) Record {
	nodes := g.Nodes()
	record := Record{
		Name:                      name,
		Nodes:                     g.NumNodes(),
		Edges:                     g.NumEdges(),
		Density:                   Density(g),
		ComponentTypeDistribution: make(map[string]int),
		TopDependencies:           make([]TopDependency, 0),
	}

	roots := g.NodesOfType(graph.NodeTypeRoot)
	record.NodeTypes = NodeTypeCounts{
		RootNodes:       len(roots),
		DependencyNodes: len(g.NodesOfType(graph.NodeTypeDependency)),
	}

	levels := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		levels = append(levels, float64(n.Level))
		record.MaxLevel = max(record.MaxLevel, n.Level)
		record.ComponentTypeDistribution[typeOf(n)]++
	}
	record.AvgLevel = utils.Mean(levels)
	record.LevelStd = utils.PopulationStd(levels)

	centrality := DegreeCentrality(g)
	record.MaxCentralNode = maxCentralNode(nodes, centrality)

	if len(roots) == 1 {
		a.analyzeDepth(g, roots[0].ID, &record)
	} else {
		a.logger.Warn("depth is not computed, graph has no unique root", "name", name, "roots", len(roots))
	}

	for _, n := range nodes {
		if n.Type == graph.NodeTypeRoot {
			continue
		}
		record.TopDependencies = append(record.TopDependencies, TopDependency{
			PURL:       n.ID,
			Name:       n.Name,
			Type:       typeOf(n),
			Level:      n.Level,
			Dependents: g.InDegree(n.ID),
			Centrality: centrality[n.ID],
			BOMRef:     n.BOMRef,
		})
	}
	slices.SortStableFunc(record.TopDependencies, func(x, y TopDependency) int {
		if c := cmp.Compare(y.Dependents, x.Dependents); c != 0 {
			return c
		}
		return cmp.Compare(x.PURL, y.PURL)
	})

	a.logger.Debug("analyzed graph", "name", name, "nodes", record.Nodes, "edges", record.Edges)
	return record
}

// maxCentralNode picks the node with the highest centrality. Ties go to the
// lexicographically smallest id.
func maxCentralNode(nodes []graph.Node, centrality map[string]float64) *CentralNode {
	if len(nodes) == 0 {
		return nil
	}
	best := nodes[0]
	for _, n := range nodes[1:] {
		c, bc := centrality[n.ID], centrality[best.ID]
		if c > bc || (c == bc && n.ID < best.ID) {
			best = n
		}
	}
	return &CentralNode{
		PURL:       best.ID,
		Name:       best.Name,
		Type:       typeOf(best),
		Centrality: centrality[best.ID],
		BOMRef:     best.BOMRef,
	}
}

// analyzeDepth measures the distances from the root. The depth is the larger
// eccentricity of the forward and the reversed graph.
func (a *Analyzer) analyzeDepth(g *graph.Graph, root string, record *Record) {
	forward := bfs(g, root, false)
	reverse := bfs(g, root, true)

	depth := max(forward.maxDistance(), reverse.maxDistance())
	record.Depth = &depth
	record.Root = &root

	lengths := make([]float64, 0, len(forward.order))
	for _, id := range forward.order {
		lengths = append(lengths, float64(forward.distance[id]))
	}
	avg := utils.Mean(lengths)
	std := utils.PopulationStd(lengths)
	record.AvgPathLength = &avg
	record.PathLengthStd = &std

	path := forward.longestPath()
	record.LongestDependencyChain = &DependencyChain{
		Length: len(path),
		Path:   path,
	}
}
