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

// Package printer renders the results of the sbomgraph commands as tables.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/l3montree-dev/sbomgraph/analysis"
	"github.com/l3montree-dev/sbomgraph/comparison"
	"github.com/l3montree-dev/sbomgraph/directdeps"
	"github.com/l3montree-dev/sbomgraph/similarity"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/l3montree-dev/sbomgraph/vulns"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

func newTable(w io.Writer, title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(titleCaser.String(title))
	tw.Style().Title.Align = text.AlignLeft
	return tw
}

func limit[T any](s []T, top int) []T {
	if top > 0 && len(s) > top {
		return s[:top]
	}
	return s
}

func orDash[T any](v *T) any {
	if v == nil {
		return "-"
	}
	return *v
}

func BuildResults(w io.Writer, rows []table.Row) {
	tw := newTable(w, "built graphs")
	tw.AppendHeader(table.Row{"SBOM", "Nodes", "Edges", "Missing", "Disconnected"})
	tw.AppendRows(rows)
	tw.Render()
}

func Record(w io.Writer, r analysis.Record, top int) {
	tw := newTable(w, "graph properties of "+r.Name)
	tw.AppendRows([]table.Row{
		{"Nodes", r.Nodes},
		{"Edges", r.Edges},
		{"Density", fmt.Sprintf("%.4f", r.Density)},
		{"Root nodes", r.NodeTypes.RootNodes},
		{"Dependency nodes", r.NodeTypes.DependencyNodes},
		{"Max level", r.MaxLevel},
		{"Avg level", fmt.Sprintf("%.2f", r.AvgLevel)},
		{"Depth", orDash(r.Depth)},
		{"Avg path length", orDash(r.AvgPathLength)},
	})
	if r.MaxCentralNode != nil {
		tw.AppendRow(table.Row{"Max central node", fmt.Sprintf("%s (%.4f)", r.MaxCentralNode.PURL, r.MaxCentralNode.Centrality)})
	}
	if r.LongestDependencyChain != nil {
		tw.AppendRow(table.Row{"Longest chain", strings.Join(r.LongestDependencyChain.Path, " -> ")})
	}
	for _, t := range utils.SortedKeys(r.ComponentTypeDistribution) {
		tw.AppendRow(table.Row{"Type " + t, r.ComponentTypeDistribution[t]})
	}
	tw.Render()

	deps := newTable(w, "top dependencies")
	deps.AppendHeader(table.Row{"PURL", "Type", "Level", "Dependents", "Centrality"})
	deps.AppendRows(utils.Map(limit(r.TopDependencies, top), func(d analysis.TopDependency) table.Row {
		return table.Row{d.PURL, d.Type, d.Level, d.Dependents, fmt.Sprintf("%.4f", d.Centrality)}
	}))
	deps.Render()
}

func ToolSummaries(w io.Writer, c analysis.ToolComparison) {
	tw := newTable(w, fmt.Sprintf("tool comparison (%d tools)", c.ToolCount))
	tw.AppendHeader(table.Row{"Tool", "Graphs", "Metric", "Min", "Max", "Mean", "Median", "Std"})
	for _, tool := range utils.SortedKeys(c.ToolSummaries) {
		s := c.ToolSummaries[tool]
		metrics := []struct {
			name  string
			stats analysis.MetricStats
		}{
			{"nodes", s.Nodes},
			{"edges", s.Edges},
			{"density", s.Density},
			{"depth", s.Depth},
		}
		for _, m := range metrics {
			tw.AppendRow(table.Row{
				strings.ToUpper(tool), s.Records, m.name,
				fmt.Sprintf("%.2f", m.stats.Min), fmt.Sprintf("%.2f", m.stats.Max),
				fmt.Sprintf("%.2f", m.stats.Mean), fmt.Sprintf("%.2f", m.stats.Median),
				fmt.Sprintf("%.2f", m.stats.Std),
			})
		}
		tw.AppendSeparator()
	}
	tw.Render()
}

func CommonDependencies(w io.Writer, deps []analysis.DependencyCount) {
	tw := newTable(w, "most common dependencies")
	tw.AppendHeader(table.Row{"PURL", "Graphs"})
	tw.AppendRows(utils.Map(deps, func(d analysis.DependencyCount) table.Row {
		return table.Row{d.PURL, d.Graphs}
	}))
	tw.Render()
}

func Comparison(w io.Writer, r comparison.Result) {
	report := r.Report()
	overall := report.Statistics.Overall

	tw := newTable(w, "dependency comparison of "+r.Repository)
	tw.AppendHeader(table.Row{"Tool", "Nodes", "Share of all dependencies"})
	for _, tool := range r.Tools {
		s := report.Statistics.ToolSpecific[tool]
		tw.AppendRow(table.Row{tool, s.Count, fmt.Sprintf("%.1f%%", s.Percentage)})
	}
	tw.AppendFooter(table.Row{"total", overall.TotalDependencies, ""})
	tw.Render()

	summary := newTable(w, "agreement")
	summary.AppendRows([]table.Row{
		{"Common", overall.CommonDependencies.Count, fmt.Sprintf("%.1f%%", overall.CommonDependencies.Percentage)},
		{"Missing in at least one tool", overall.MissingDependencies.Count, fmt.Sprintf("%.1f%%", overall.MissingDependencies.Percentage)},
	})
	summary.Render()

	pairs := newTable(w, "pairwise comparison")
	pairs.AppendHeader(table.Row{"Tool 1", "Tool 2", "Common", "Only in tool 1", "Only in tool 2"})
	pairs.AppendRows(utils.Map(r.Pairwise, func(p comparison.PairwiseComparison) table.Row {
		return table.Row{p.Tool1, p.Tool2, p.Common, len(p.OnlyInTool1), len(p.OnlyInTool2)}
	}))
	pairs.Render()
}

// Missed prints the identifiers a baseline tool did not find together with the tools which found them.
func Missed(w io.Writer, repository, baseline string, missed map[string][]string) {
	tw := newTable(w, fmt.Sprintf("found by other tools but not by %s in %s", baseline, repository))
	tw.AppendHeader(table.Row{"PURL", "Found by"})
	for _, id := range utils.SortedKeys(missed) {
		tw.AppendRow(table.Row{id, strings.Join(missed[id], ", ")})
	}
	tw.AppendFooter(table.Row{"total", len(missed)})
	tw.Render()
}

func KernelResults(w io.Writer, results []similarity.PairResult, summary similarity.Summary) {
	tw := newTable(w, "graph kernel similarity")
	tw.AppendHeader(table.Row{"Repository", "Tool 1", "Tool 2", "Kernel", "Normalized"})
	tw.AppendRows(utils.Map(results, func(r similarity.PairResult) table.Row {
		return table.Row{r.Repo, r.Tool1, r.Tool2, r.KernelValue, fmt.Sprintf("%.4f", r.NormalizedKernel)}
	}))
	tw.AppendFooter(table.Row{"mean / median / std", "", "", "", fmt.Sprintf("%.4f / %.4f / %.4f", summary.Mean, summary.Median, summary.Std)})
	tw.Render()
}

func Packages(w io.Writer, report analysis.PackageReport, top int) {
	tw := newTable(w, "most popular packages")
	tw.AppendHeader(table.Row{"PURL", "Repos", "Avg centrality", "Avg dependents", "Max dependents"})
	tw.AppendRows(utils.Map(limit(report.PopularitySorted, top), func(p analysis.PackagePopularity) table.Row {
		return table.Row{p.PURL, p.Repos, fmt.Sprintf("%.4f", p.AvgCentrality), fmt.Sprintf("%.2f", p.AvgDependents), p.MaxDependents}
	}))
	tw.Render()

	versions := newTable(w, "version analysis")
	versions.AppendHeader(table.Row{"Package", "Unique versions", "Total", "Versions"})
	versions.AppendRows(utils.Map(limit(report.VersionAnalysis, top), func(p analysis.PackageVersions) table.Row {
		return table.Row{p.BasePURL, p.UniqueVersions, p.TotalCount, strings.Join(p.Versions, ", ")}
	}))
	versions.Render()
}

func Vulnerabilities(w io.Writer, report vulns.Report) {
	tw := newTable(w, "critical vulnerabilities")
	tw.AppendHeader(table.Row{"#", "Repository", "CVE", "Component", "Found by"})
	tw.AppendRows(utils.Map(report.VulnerabilityTable, func(e vulns.TableEntry) table.Row {
		return table.Row{e.Number, e.Repository, e.CVE, e.ComponentPURL, strings.Join(e.FoundBy, ", ")}
	}))
	tw.Render()

	tools := newTable(w, "findings per tool")
	tools.AppendHeader(table.Row{"Tool", "Findings"})
	for _, tool := range utils.SortedKeys(report.ToolSummary) {
		tools.AppendRow(table.Row{tool, report.ToolSummary[tool]})
	}
	tools.AppendFooter(table.Row{"unique cves", report.DiagnosticInfo.UniqueCVEs})
	tools.Render()
}

func DirectDependencies(w io.Writer, report directdeps.Report, top int) {
	tw := newTable(w, fmt.Sprintf("direct dependencies of %d repositories", report.TotalRepositories))
	tw.AppendHeader(table.Row{"Package", "Repos", "Versions", "Occurrences"})
	tw.AppendRows(utils.Map(limit(report.Packages, top), func(p directdeps.PackageStats) table.Row {
		return table.Row{p.Package, p.Repos, p.UniqueVersions, p.Occurrences}
	}))
	tw.Render()
}
