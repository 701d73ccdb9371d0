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
	"log/slog"
	"slices"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientGraphs = errors.New("not enough graphs to compare")
	ErrUnknownBaseline    = errors.New("baseline tool is not part of the comparison")
)

// ToolGraph is a graph attributed to the tool which produced the sbom.
type ToolGraph struct {
	Tool  string
	Graph *graph.Graph
}

// Result compares the node sets of several tools for the same repository.
// Every list is sorted.
type Result struct {
	Repository string
	Tools      []string
	NodeCounts map[string]int
	// Common maps every node present in all graphs to all tools
	Common map[string][]string
	// Missing maps every node absent in at least one graph to the tools missing it
	Missing  map[string][]string
	Pairwise []PairwiseComparison
}

type PairwiseComparison struct {
	Tool1       string
	Tool2       string
	Common      []string
	OnlyInTool1 []string
	OnlyInTool2 []string
}

// TotalDependencies is the size of the union of all node sets.
func (r Result) TotalDependencies() int {
	return len(r.Common) + len(r.Missing)
}

type Comparator struct {
	logger *slog.Logger
}

func NewComparator(logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{logger: logger}
}

// nodeSets returns the node set per tool and the sorted tool names.
// A tool appearing twice keeps its last graph.
func (c *Comparator) nodeSets(graphs []ToolGraph) (map[string]utils.Set[string], []string) {
	sets := make(map[string]utils.Set[string], len(graphs))
	for _, tg := range graphs {
		if _, ok := sets[tg.Tool]; ok {
			c.logger.Warn("tool appears more than once, using the last graph", "tool", tg.Tool)
		}
		sets[tg.Tool] = utils.NewSet(tg.Graph.NodeIDs()...)
	}
	return sets, utils.SortedKeys(sets)
}

// Compare aligns the node sets of all graphs. minGraphs is raised to 2 if lower.
func (c *Comparator) Compare(repository string, graphs []ToolGraph, minGraphs int) (Result, error) {
	minGraphs = max(minGraphs, 2)
	sets, tools := c.nodeSets(graphs)
	if len(tools) < minGraphs {
		return Result{}, errors.Wrapf(ErrInsufficientGraphs, "repository %s has %d graphs, need at least %d", repository, len(tools), minGraphs)
	}

	res := Result{
		Repository: repository,
		Tools:      tools,
		NodeCounts: make(map[string]int, len(tools)),
		Common:     make(map[string][]string),
		Missing:    make(map[string][]string),
		Pairwise:   make([]PairwiseComparison, 0),
	}

	all := utils.NewSet[string]()
	for _, tool := range tools {
		res.NodeCounts[tool] = len(sets[tool])
		all = all.Union(sets[tool])
	}

	for _, dep := range all.Sorted() {
		missingFrom := utils.Filter(tools, func(tool string) bool {
			return !sets[tool].Has(dep)
		})
		if len(missingFrom) == 0 {
			res.Common[dep] = slices.Clone(tools)
		} else {
			res.Missing[dep] = missingFrom
		}
	}

	for _, pair := range utils.Pairs(tools) {
		a, b := sets[pair[0]], sets[pair[1]]
		res.Pairwise = append(res.Pairwise, PairwiseComparison{
			Tool1:       pair[0],
			Tool2:       pair[1],
			Common:      a.Intersect(b).Sorted(),
			OnlyInTool1: a.Difference(b).Sorted(),
			OnlyInTool2: b.Difference(a).Sorted(),
		})
	}

	c.logger.Debug("compared graphs", "repository", repository, "tools", len(tools), "common", len(res.Common), "missing", len(res.Missing))
	return res, nil
}

// FirstVsRest maps every node the baseline did not find to the tools which found it.
// An empty baseline selects the tool of the first graph.
func (c *Comparator) FirstVsRest(baseline string, graphs []ToolGraph) (map[string][]string, error) {
	if len(graphs) == 0 {
		return nil, errors.Wrap(ErrInsufficientGraphs, "need at least 2 graphs")
	}
	if baseline == "" {
		baseline = graphs[0].Tool
	}
	sets, tools := c.nodeSets(graphs)
	if len(tools) < 2 {
		return nil, errors.Wrap(ErrInsufficientGraphs, "need at least 2 graphs")
	}
	if _, ok := sets[baseline]; !ok {
		return nil, errors.Wrapf(ErrUnknownBaseline, "baseline %s", baseline)
	}
	return missedBy(baseline, sets, tools), nil
}

// AllVsAll runs FirstVsRest with every tool as baseline.
func (c *Comparator) AllVsAll(graphs []ToolGraph) (map[string]map[string][]string, error) {
	sets, tools := c.nodeSets(graphs)
	if len(tools) < 2 {
		return nil, errors.Wrap(ErrInsufficientGraphs, "need at least 2 graphs")
	}
	res := make(map[string]map[string][]string, len(tools))
	for _, tool := range tools {
		res[tool] = missedBy(tool, sets, tools)
	}
	return res, nil
}

func missedBy(baseline string, sets map[string]utils.Set[string], tools []string) map[string][]string {
	missed := make(map[string][]string)
	for _, tool := range tools {
		if tool == baseline {
			continue
		}
		for _, dep := range sets[tool].Difference(sets[baseline]).Sorted() {
			missed[dep] = append(missed[dep], tool)
		}
	}
	return missed
}
