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
	"slices"

	"github.com/l3montree-dev/sbomgraph/utils"
)

type MetricStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Range  float64 `json:"range"`
}

type ToolSummary struct {
	Records        int                    `json:"records"`
	Nodes          MetricStats            `json:"nodes"`
	Edges          MetricStats            `json:"edges"`
	Density        MetricStats            `json:"density"`
	Depth          MetricStats            `json:"depth"`
	ComponentTypes map[string]MetricStats `json:"component_types"`
}

type ToolComparison struct {
	ToolCount     int                    `json:"tool_count"`
	ToolSummaries map[string]ToolSummary `json:"tool_summaries"`
}

func newMetricStats(values []float64) MetricStats {
	if len(values) == 0 {
		return MetricStats{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	return MetricStats{
		Min:    lo,
		Max:    hi,
		Mean:   utils.Mean(values),
		Median: utils.Median(values),
		Std:    utils.PopulationStd(values),
		Range:  hi - lo,
	}
}

// SummarizeTools computes the distribution of the core metrics per tool.
// Records without a depth do not contribute to the depth statistics.
func SummarizeTools(recordsByTool map[string][]Record) ToolComparison {
	res := ToolComparison{
		ToolCount:     len(recordsByTool),
		ToolSummaries: make(map[string]ToolSummary, len(recordsByTool)),
	}

	for tool, records := range recordsByTool {
		var nodes, edges, density, depth []float64
		componentTypes := utils.NewSet[string]()
		for _, r := range records {
			nodes = append(nodes, float64(r.Nodes))
			edges = append(edges, float64(r.Edges))
			density = append(density, r.Density)
			if r.Depth != nil {
				depth = append(depth, float64(*r.Depth))
			}
			for t := range r.ComponentTypeDistribution {
				componentTypes.Add(t)
			}
		}

		summary := ToolSummary{
			Records:        len(records),
			Nodes:          newMetricStats(nodes),
			Edges:          newMetricStats(edges),
			Density:        newMetricStats(density),
			Depth:          newMetricStats(depth),
			ComponentTypes: make(map[string]MetricStats),
		}
		for _, t := range componentTypes.Sorted() {
			// records without nodes of this type count as 0
			counts := make([]float64, 0, len(records))
			for _, r := range records {
				counts = append(counts, float64(r.ComponentTypeDistribution[t]))
			}
			summary.ComponentTypes[t] = newMetricStats(counts)
		}
		res.ToolSummaries[tool] = summary
	}
	return res
}

type DependencyCount struct {
	PURL   string `json:"purl"`
	Graphs int    `json:"graphs"`
}

// CommonDependencies counts in how many records a package has at least one dependent.
// Only packages appearing in more than one record are returned, most frequent first.
func CommonDependencies(records []Record, limit int) []DependencyCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, dep := range r.TopDependencies {
			if dep.Dependents > 0 {
				counts[dep.PURL]++
			}
		}
	}

	res := make([]DependencyCount, 0)
	for purl, c := range counts {
		if c > 1 {
			res = append(res, DependencyCount{PURL: purl, Graphs: c})
		}
	}
	slices.SortFunc(res, func(a, b DependencyCount) int {
		if c := cmp.Compare(b.Graphs, a.Graphs); c != 0 {
			return c
		}
		return cmp.Compare(a.PURL, b.PURL)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}
