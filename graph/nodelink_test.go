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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeLink(t *testing.T) {
	t.Run("should write the node-link field names", func(t *testing.T) {
		bom := singleDependencyBOM()
		components := append(*bom.Components, cdx.Component{BOMRef: "c2"})
		bom.Components = &components
		g, _ := build(t, bom)

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, g))

		var raw map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
		assert.Equal(t, true, raw["directed"])
		assert.Equal(t, false, raw["multigraph"])

		nodes := raw["nodes"].([]any)
		require.Len(t, nodes, 3)
		c2 := nodes[2].(map[string]any)
		assert.Equal(t, "c2", c2["id"])
		assert.Equal(t, "disconnected_dependency", c2["type"])
		assert.Equal(t, true, c2["disconnected"])
		assert.Equal(t, float64(1), c2["level"])
		assert.Equal(t, "c2", c2["bom_ref"])
		assert.NotContains(t, c2, "purl")

		links := raw["links"].([]any)
		require.Len(t, links, 2)
		assert.Equal(t, map[string]any{
			"source": "root",
			"target": "c2",
			"type":   "disconnected_depends_on",
		}, links[1])
	})

	t.Run("should restore an identical graph", func(t *testing.T) {
		g, _ := build(t, singleDependencyBOM())

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, g))
		restored, err := Decode(&buf)
		require.NoError(t, err)

		assert.Equal(t, g.Nodes(), restored.Nodes())
		assert.Equal(t, g.Edges(), restored.Edges())
		assert.Equal(t, g.Attributes(), restored.Attributes())
	})

	t.Run("should key nodes by their purl if present", func(t *testing.T) {
		doc := `{
			"directed": true, "multigraph": false, "graph": {},
			"nodes": [
				{"id": "root", "name": "root", "type": "root", "level": 0},
				{"id": "c1", "purl": "pkg:pypi/foo@1.0", "name": "foo", "type": "dependency", "level": 1}
			],
			"links": [{"source": "root", "target": "c1", "type": "depends_on"}]
		}`

		g, err := Decode(strings.NewReader(doc))
		require.NoError(t, err)

		assert.Equal(t, []string{"root", "pkg:pypi/foo@1.0"}, g.NodeIDs())
		assert.Equal(t, []string{"pkg:pypi/foo@1.0"}, g.Successors("root"))
	})

	t.Run("should support json.Marshal", func(t *testing.T) {
		g, _ := build(t, singleDependencyBOM())

		data, err := json.Marshal(g)
		require.NoError(t, err)

		restored := New()
		require.NoError(t, json.Unmarshal(data, restored))
		assert.Equal(t, g.NodeIDs(), restored.NodeIDs())
	})
}

func TestRenderToMermaid(t *testing.T) {
	bom := singleDependencyBOM()
	components := append(*bom.Components, cdx.Component{BOMRef: "c2"})
	bom.Components = &components
	g, _ := build(t, bom)

	rendered := g.RenderToMermaid()

	assert.True(t, strings.HasPrefix(rendered, "```mermaid"))
	assert.Contains(t, rendered, "root([\"my-app\"]) --- pkg_pypi_foo_1_0([\"foo\"])\n")
	assert.Contains(t, rendered, "root([\"my-app\"]) -.- c2([\"c2\"])\n")
}
