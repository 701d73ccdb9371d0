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
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// NodeLinkNode is the serialized form of a node.
// PURL is only read. Older artifacts carry the package url in a separate field.
type NodeLinkNode struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         NodeType `json:"type"`
	Level        int      `json:"level"`
	BOMRef       string   `json:"bom_ref"`
	Disconnected bool     `json:"disconnected"`
	PURL         string   `json:"purl,omitempty"`
}

type NodeLinkLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// NodeLinkDocument is the persisted graph format shared by all commands.
type NodeLinkDocument struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []NodeLinkNode `json:"nodes"`
	Links      []NodeLinkLink `json:"links"`
}

func (g *Graph) ToNodeLink() NodeLinkDocument {
	doc := NodeLinkDocument{
		Directed:   true,
		Multigraph: false,
		Graph:      make(map[string]any),
		Nodes:      make([]NodeLinkNode, 0, g.NumNodes()),
		Links:      make([]NodeLinkLink, 0, g.NumEdges()),
	}
	for k, v := range g.attributes {
		doc.Graph[k] = v
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeLinkNode{
			ID:           n.ID,
			Name:         n.Name,
			Type:         n.Type,
			Level:        n.Level,
			BOMRef:       n.BOMRef,
			Disconnected: n.Type == NodeTypeDisconnected,
		})
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, NodeLinkLink{
			Source: e.Source,
			Target: e.Target,
			Type:   e.Type,
		})
	}
	return doc
}

// FromNodeLink restores a graph. Nodes carrying a purl are keyed by it.
func FromNodeLink(doc NodeLinkDocument) *Graph {
	g := New()
	for k, v := range doc.Graph {
		if s, ok := v.(string); ok {
			g.SetAttribute(k, s)
		}
	}

	keys := make(map[string]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		key := n.ID
		if n.PURL != "" {
			key = n.PURL
		}
		keys[n.ID] = key

		t := n.Type
		if t == "" && n.Disconnected {
			t = NodeTypeDisconnected
		}
		g.AddNode(Node{
			ID:     key,
			Name:   n.Name,
			Type:   t,
			Level:  n.Level,
			BOMRef: n.BOMRef,
		})
	}

	keyOf := func(id string) string {
		if key, ok := keys[id]; ok {
			return key
		}
		return id
	}
	for _, l := range doc.Links {
		t := l.Type
		if t == "" {
			t = EdgeTypeDependsOn
		}
		g.AddEdge(keyOf(l.Source), keyOf(l.Target), t)
	}
	return g
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToNodeLink())
}

func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc NodeLinkDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*g = *FromNodeLink(doc)
	return nil
}

// Encode writes the graph as indented node-link json.
func Encode(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.ToNodeLink()); err != nil {
		return errors.Wrap(err, "could not encode graph")
	}
	return nil
}

func Decode(r io.Reader) (*Graph, error) {
	var doc NodeLinkDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode graph")
	}
	return FromNodeLink(doc), nil
}
