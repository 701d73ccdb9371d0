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

// Package similarity scores the structural similarity of two dependency graphs
// with the Weisfeiler-Lehman subtree kernel.
//
// The score is a heuristic. It is symmetric and non negative but no metric.
package similarity

import (
	"math"
	"slices"
	"strings"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
)

const (
	DefaultIterations = 3
	labelSeparator    = "_"
)

// initialLabels labels every node with its name, falling back to its type and its id.
func initialLabels(g *graph.Graph) map[string]string {
	labels := make(map[string]string, g.NumNodes())
	for _, n := range g.Nodes() {
		labels[n.ID] = utils.FirstNonEmpty(n.Name, string(n.Type), n.ID)
	}
	return labels
}

// relabel appends the sorted labels of the successors to the label of every node.
func relabel(g *graph.Graph, labels map[string]string) map[string]string {
	next := make(map[string]string, len(labels))
	for id, label := range labels {
		successors := g.Successors(id)
		neighborLabels := make([]string, len(successors))
		for i, s := range successors {
			neighborLabels[i] = labels[s]
		}
		slices.Sort(neighborLabels)
		next[id] = label + labelSeparator + strings.Join(neighborLabels, labelSeparator)
	}
	return next
}

func countLabels(labels map[string]string) map[string]int {
	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

// Kernel computes the unnormalized WL subtree kernel with h iterations.
// Every iteration adds the sum of count1 * count2 over all labels present in both graphs.
func Kernel(g1, g2 *graph.Graph, h int) int {
	labels1 := initialLabels(g1)
	labels2 := initialLabels(g2)

	kernel := 0
	for i := range h {
		counts1 := countLabels(labels1)
		counts2 := countLabels(labels2)
		for label, c1 := range counts1 {
			kernel += c1 * counts2[label]
		}

		if i == h-1 {
			// the labels of the last relabeling would never be counted
			break
		}
		labels1 = relabel(g1, labels1)
		labels2 = relabel(g2, labels2)
	}
	return kernel
}

// Normalize divides the kernel value by the geometric mean of both self similarities.
// Returns 0 if one of the graphs has no self similarity.
func Normalize(kernel, selfSimilarity1, selfSimilarity2 int) float64 {
	if selfSimilarity1 <= 0 || selfSimilarity2 <= 0 {
		return 0
	}
	return float64(kernel) / math.Sqrt(float64(selfSimilarity1)*float64(selfSimilarity2))
}

// NormalizedKernel is 1 for two isomorphic non empty graphs with identical labels.
func NormalizedKernel(g1, g2 *graph.Graph, h int) float64 {
	return Normalize(Kernel(g1, g2, h), Kernel(g1, g1, h), Kernel(g2, g2, h))
}
