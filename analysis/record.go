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

// Record is the persisted structural summary of a single dependency graph.
// Pointer fields are null if the graph has no unique root.
type Record struct {
	Name                      string           `json:"name"`
	Nodes                     int              `json:"nodes"`
	Edges                     int              `json:"edges"`
	Density                   float64          `json:"density"`
	NodeTypes                 NodeTypeCounts   `json:"node_types"`
	MaxLevel                  int              `json:"max_level"`
	AvgLevel                  float64          `json:"avg_level"`
	LevelStd                  float64          `json:"level_std"`
	MaxCentralNode            *CentralNode     `json:"max_central_node"`
	Depth                     *int             `json:"depth"`
	Root                      *string          `json:"root"`
	AvgPathLength             *float64         `json:"avg_path_length"`
	PathLengthStd             *float64         `json:"path_length_std"`
	ComponentTypeDistribution map[string]int   `json:"component_type_distribution"`
	LongestDependencyChain    *DependencyChain `json:"longest_dependency_chain"`
	TopDependencies           []TopDependency  `json:"top_dependencies"`
}

type NodeTypeCounts struct {
	RootNodes       int `json:"root_nodes"`
	DependencyNodes int `json:"dependency_nodes"`
}

type CentralNode struct {
	PURL       string  `json:"purl"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Centrality float64 `json:"centrality"`
	BOMRef     string  `json:"bom_ref"`
}

// DependencyChain is a shortest path from the root. Length counts the nodes of the path.
type DependencyChain struct {
	Length int      `json:"length"`
	Path   []string `json:"path"`
}

type TopDependency struct {
	PURL       string  `json:"purl"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Level      int     `json:"level"`
	Dependents int     `json:"dependents (incoming edges)"`
	Centrality float64 `json:"centrality"`
	BOMRef     string  `json:"bom_ref"`
}
