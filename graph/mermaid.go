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
	"fmt"
	"slices"
	"strings"

	"github.com/l3montree-dev/sbomgraph/normalize"
)

const mermaidFlowChart = "mermaid \n %%{init: { 'theme':'base', 'themeVariables': {\n'primaryColor': '#F3F3F3',\n'primaryTextColor': '#0D1117',\n'primaryBorderColor': '#999999',\n'lineColor': '#999999',\n'secondaryColor': '#ffffff',\n'tertiaryColor': '#ffffff'\n} }}%%\n flowchart TD\n"

// RenderToMermaid renders every edge reachable from the root as a mermaid flow chart.
// Disconnected edges are dotted.
func (g *Graph) RenderToMermaid() string {
	var builder strings.Builder
	builder.WriteString(mermaidFlowChart)

	visited := map[string]struct{}{RootNodeID: {}}
	queue := []string{RootNodeID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		// sort the children to ensure consistent rendering
		children := g.Successors(current)
		slices.Sort(children)

		fromID, fromLabel := g.mermaidNode(current)
		for _, child := range children {
			toID, toLabel := g.mermaidNode(child)
			arrow := "---"
			if t, _ := g.EdgeType(current, child); t == EdgeTypeDisconnectedDependsOn {
				arrow = "-.-"
			}
			fmt.Fprintf(&builder, "%s([\"%s\"]) %s %s([\"%s\"])\n", fromID, fromLabel, arrow, toID, toLabel)

			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			queue = append(queue, child)
		}
	}

	return "```" + builder.String() + "\nclassDef default stroke-width:2px\n```\n"
}

func (g *Graph) mermaidNode(id string) (string, string) {
	if id == RootNodeID {
		label := g.Attribute(AttrRootName)
		if label == "" {
			label = RootNodeID
		}
		return RootNodeID, escapeAtSign(label)
	}
	label, err := normalize.BeautifyPURL(id)
	if err != nil {
		label = id
	}
	return escapeNodeID(id), escapeAtSign(label)
}

func escapeNodeID(s string) string {
	if s == "" {
		return RootNodeID
	}
	// mermaid node ids may not contain purl separators
	return strings.NewReplacer("@", "_", ":", "_", "/", "_", ".", "_", "-", "_", "%", "_", "?", "_", "=", "_", "&", "_", "#", "_", " ", "_").Replace(s)
}

func escapeAtSign(label string) string {
	return strings.NewReplacer("@", "\\@", "\"", "'").Replace(label)
}
