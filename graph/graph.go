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

package graph

import (
	"maps"
)

// =============================================================================
// NODE AND EDGE TYPES
// =============================================================================

// NodeType identifies the role of a node inside a dependency graph.
type NodeType string

const (
	NodeTypeRoot         NodeType = "root"
	NodeTypeDependency   NodeType = "dependency"
	NodeTypeDisconnected NodeType = "disconnected_dependency"
)

// EdgeType distinguishes declared dependencies from the synthetic edges
// which attach otherwise unreachable components to the root.
type EdgeType string

const (
	EdgeTypeDependsOn             EdgeType = "depends_on"
	EdgeTypeDisconnectedDependsOn EdgeType = "disconnected_depends_on"
)

// RootNodeID is the node key of the root component.
const RootNodeID = "root"

// Graph level attribute keys.
const (
	AttrRootName   = "root_name"
	AttrRootPURL   = "root_purl"
	AttrRootBOMRef = "root_bom_ref"
)

// Node is a package of the graph. ID is the package url if the component
// declared one, otherwise its name or bom-ref.
type Node struct {
	ID     string
	Name   string
	Type   NodeType
	Level  int
	BOMRef string
}

type Edge struct {
	Source string
	Target string
	Type   EdgeType
}

// =============================================================================
// GRAPH
// =============================================================================

// Graph is a directed dependency graph without parallel edges.
// Nodes and edges are kept in insertion order, so every traversal is
// deterministic for a given construction sequence.
//
// A Graph is built once and treated as read-only afterwards. All accessors
// return copies.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string

	edges     map[[2]string]EdgeType
	edgeOrder [][2]string

	successors   map[string][]string
	predecessors map[string][]string

	attributes map[string]string
}

func New() *Graph {
	return &Graph{
		nodes:        make(map[string]*Node),
		edges:        make(map[[2]string]EdgeType),
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
		attributes:   make(map[string]string),
	}
}

// AddNode adds the node if there is no node with the same ID yet.
// Returns false if the node already existed - the existing one is kept.
func (g *Graph) AddNode(n Node) bool {
	if _, ok := g.nodes[n.ID]; ok {
		return false
	}
	g.nodes[n.ID] = &n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return true
}

// AddEdge adds a directed edge. Missing endpoints are created without attributes.
// Adding an existing edge again only updates its type.
func (g *Graph) AddEdge(source, target string, edgeType EdgeType) {
	g.AddNode(Node{ID: source})
	g.AddNode(Node{ID: target})

	key := [2]string{source, target}
	if _, ok := g.edges[key]; !ok {
		g.edgeOrder = append(g.edgeOrder, key)
		g.successors[source] = append(g.successors[source], target)
		g.predecessors[target] = append(g.predecessors[target], source)
	}
	g.edges[key] = edgeType
}

func (g *Graph) SetAttribute(key, value string) {
	g.attributes[key] = value
}

func (g *Graph) Attribute(key string) string {
	return g.attributes[key]
}

func (g *Graph) Attributes() map[string]string {
	return maps.Clone(g.attributes)
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	res := make([]Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		res[i] = *g.nodes[id]
	}
	return res
}

func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.nodeOrder...)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	res := make([]Edge, len(g.edgeOrder))
	for i, key := range g.edgeOrder {
		res[i] = Edge{Source: key[0], Target: key[1], Type: g.edges[key]}
	}
	return res
}

func (g *Graph) EdgeType(source, target string) (EdgeType, bool) {
	t, ok := g.edges[[2]string{source, target}]
	return t, ok
}

func (g *Graph) Successors(id string) []string {
	return append([]string(nil), g.successors[id]...)
}

func (g *Graph) Predecessors(id string) []string {
	return append([]string(nil), g.predecessors[id]...)
}

func (g *Graph) InDegree(id string) int {
	return len(g.predecessors[id])
}

func (g *Graph) OutDegree(id string) int {
	return len(g.successors[id])
}

// Degree counts incoming and outgoing edges.
func (g *Graph) Degree(id string) int {
	return g.InDegree(id) + g.OutDegree(id)
}

func (g *Graph) NumNodes() int {
	return len(g.nodeOrder)
}

func (g *Graph) NumEdges() int {
	return len(g.edgeOrder)
}

// NodesOfType returns the nodes of the given type in insertion order.
func (g *Graph) NodesOfType(t NodeType) []Node {
	res := make([]Node, 0)
	for _, id := range g.nodeOrder {
		if g.nodes[id].Type == t {
			res = append(res, *g.nodes[id])
		}
	}
	return res
}
