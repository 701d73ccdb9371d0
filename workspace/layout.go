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

// Package workspace knows where sbomgraph reads its inputs from and where it
// persists graphs, analysis records and reports.
//
// The layout below the output directory is
//
//	<repo>/json/<stem>_graph.json
//	<repo>/mermaid/<stem>_graph.md
//	<repo>/graphProperties/<stem>_graph_properties.json
//	<repo>/graphProperties/dependency_comparison.json
//
// where stem is the file name of the sbom without its .json extension.
package workspace

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/l3montree-dev/sbomgraph/utils"
)

const (
	GraphSuffix      = "_graph"
	PropertiesSuffix = "_graph_properties"

	JSONDir       = "json"
	MermaidDir    = "mermaid"
	PropertiesDir = "graphProperties"

	ComparisonFileName    = "dependency_comparison.json"
	FirstVsRestFileName   = "first_vs_rest_comparison.json"
	AllVsAllFileName      = "all_vs_all_comparison.json"
	KernelResultsFileName = "graph_kernel_analysis_results.csv"

	goldStandardTool = "sbomgold"
)

type Layout struct {
	SBOMDir     string
	OutputDir   string
	AnalysisDir string
}

func (l Layout) RepositoryDir(repo string) string {
	return filepath.Join(l.OutputDir, repo)
}

func (l Layout) GraphPath(repo, stem string) string {
	return filepath.Join(l.RepositoryDir(repo), JSONDir, stem+GraphSuffix+".json")
}

func (l Layout) MermaidPath(repo, stem string) string {
	return filepath.Join(l.RepositoryDir(repo), MermaidDir, stem+GraphSuffix+".md")
}

func (l Layout) PropertiesPath(repo, stem string) string {
	return filepath.Join(l.RepositoryDir(repo), PropertiesDir, stem+PropertiesSuffix+".json")
}

func (l Layout) ComparisonPath(repo, fileName string) string {
	return filepath.Join(l.RepositoryDir(repo), PropertiesDir, fileName)
}

func (l Layout) KernelResultsPath() string {
	return filepath.Join(l.AnalysisDir, KernelResultsFileName)
}

// ReportPath places a timestamped report below the analysis directory.
func (l Layout) ReportPath(name string, now time.Time) string {
	return filepath.Join(l.AnalysisDir, ReportFileName(name, now))
}

// ReportFileName turns a report name into a file name like
// package_analysis_20250101_120000.json.
func ReportFileName(name string, now time.Time) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_") + "_" + now.Format(utils.ReportTimestampLayout) + ".json"
}

// Stem strips the directory and the .json extension of a file.
func Stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}

// ToolName derives the scanning tool from the stem of an sbom or graph file.
// Files are named <repo>&<tool>..., the gold standard sbom contains sbomgold.
// Everything after the tool name starting at "_" or "." is dropped. Stems
// without "&" are returned unchanged.
func ToolName(stem string) string {
	stem = strings.TrimSuffix(stem, GraphSuffix)
	if strings.Contains(stem, goldStandardTool) {
		return goldStandardTool
	}
	parts := strings.Split(stem, "&")
	if len(parts) < 2 {
		return stem
	}
	tool := parts[1]
	if i := strings.IndexAny(tool, "_."); i > 0 {
		tool = tool[:i]
	}
	return tool
}
