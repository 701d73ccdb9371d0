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
	"slices"

	"github.com/l3montree-dev/sbomgraph/graph"
)

// shortestPaths is the result of a breadth first search from a single source.
type shortestPaths struct {
	// order contains every reached node in discovery order, starting with the source
	order    []string
	distance map[string]int
	parent   map[string]string
}

// bfs walks the graph from source. If reverse is set, edges are followed against their direction.
func bfs(g *graph.Graph, source string, reverse bool) shortestPaths {
	res := shortestPaths{
		order:    []string{source},
		distance: map[string]int{source: 0},
		parent:   make(map[string]string),
	}

	queue := []string{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var next []string
		if reverse {
			next = g.Predecessors(current)
		} else {
			next = g.Successors(current)
		}
		for _, n := range next {
			if _, ok := res.distance[n]; ok {
				continue
			}
			res.distance[n] = res.distance[current] + 1
			res.parent[n] = current
			res.order = append(res.order, n)
			queue = append(queue, n)
		}
	}
	return res
}

func (s shortestPaths) maxDistance() int {
	m := 0
	for _, d := range s.distance {
		m = max(m, d)
	}
	return m
}

// pathTo reconstructs the path from the source to target.
func (s shortestPaths) pathTo(target string) []string {
	path := []string{target}
	for {
		p, ok := s.parent[path[len(path)-1]]
		if !ok {
			break
		}
		path = append(path, p)
	}
	slices.Reverse(path)
	return path
}

// longestPath returns the first path of maximal length in discovery order.
func (s shortestPaths) longestPath() []string {
	longest := s.order[0]
	for _, n := range s.order {
		if s.distance[n] > s.distance[longest] {
			longest = n
		}
	}
	return s.pathTo(longest)
}
