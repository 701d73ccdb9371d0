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

package printer

import (
	"bytes"
	"testing"

	"github.com/l3montree-dev/sbomgraph/analysis"
	"github.com/l3montree-dev/sbomgraph/directdeps"
	"github.com/stretchr/testify/assert"
)

func TestLimit(t *testing.T) {
	t.Run("should cut the slice to the top entries", func(t *testing.T) {
		assert.Equal(t, []int{1, 2}, limit([]int{1, 2, 3}, 2))
	})
	t.Run("should keep everything if top is not positive", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, limit([]int{1, 2, 3}, 0))
	})
}

func TestRecord(t *testing.T) {
	t.Run("should print a dash for missing depth information", func(t *testing.T) {
		var buf bytes.Buffer
		Record(&buf, analysis.Record{
			Name:  "repo&trivy_graph.json",
			Nodes: 3,
			TopDependencies: []analysis.TopDependency{
				{PURL: "pkg:npm/a@1.0.0", Type: "dependency", Dependents: 2},
				{PURL: "pkg:npm/b@1.0.0", Type: "dependency", Dependents: 1},
			},
		}, 1)

		out := buf.String()
		assert.Contains(t, out, "repo&trivy_graph.json")
		assert.Contains(t, out, "-")
		assert.Contains(t, out, "pkg:npm/a@1.0.0")
		assert.NotContains(t, out, "pkg:npm/b@1.0.0")
	})
}

func TestDirectDependencies(t *testing.T) {
	t.Run("should print every package", func(t *testing.T) {
		var buf bytes.Buffer
		DirectDependencies(&buf, directdeps.Report{
			TotalRepositories: 2,
			Packages: []directdeps.PackageStats{
				{Package: "requests", Repos: 2, UniqueVersions: 1, Occurrences: 2},
				{Package: "numpy", Repos: 1, UniqueVersions: 1, Occurrences: 1},
			},
		}, 0)

		assert.Contains(t, buf.String(), "requests")
		assert.Contains(t, buf.String(), "numpy")
	})
}
