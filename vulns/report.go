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

package vulns

import (
	"strings"

	"github.com/l3montree-dev/sbomgraph/utils"
)

// Scan are the findings of one tool for one repository.
type Scan struct {
	Repository string
	Tool       string
	Findings   []Finding
}

type TableEntry struct {
	Number        int      `json:"number"`
	Repository    string   `json:"repository"`
	CVE           string   `json:"cve"`
	ComponentPURL string   `json:"component_purl"`
	FoundBy       []string `json:"found_by"`
}

type RepositorySummary struct {
	TotalVulnerabilities int                  `json:"total_vulnerabilities"`
	ToolCounts           map[string]int       `json:"tool_counts"`
	Vulnerabilities      map[string][]Finding `json:"vulnerabilities"`
}

type DiagnosticInfo struct {
	TotalVulnerabilitiesFound int            `json:"total_vulnerabilities_found"`
	UniqueCVEs                int            `json:"unique_cves"`
	CVEsPerRepo               map[string]int `json:"cves_per_repo"`
	AllUniqueCVEs             []string       `json:"all_unique_cves"`
}

type DuplicateFinding struct {
	CVE       string `json:"cve"`
	Tool      string `json:"tool"`
	Component string `json:"component"`
}

type OverlapAnalysis struct {
	ToolOverlaps map[string]map[string]int `json:"tool_overlaps"`
	RepoOverlaps map[string]map[string]int `json:"repo_overlaps"`
	// CVEFrequency counts every finding of a cve over all tools and repositories
	CVEFrequency map[string]int `json:"cve_frequency"`
}

type OverlapCounts struct {
	ToolCombinations map[string]int `json:"tool_combinations"`
	RepoOverlaps     map[string]int `json:"repo_overlaps"`
	// CVEFrequency counts the repositories of a cve
	CVEFrequency map[string]int `json:"cve_frequency"`
}

type CountVerification struct {
	TotalEntries     int            `json:"total_entries"`
	TotalFromTools   int            `json:"total_from_tools"`
	UniqueCVEs       int            `json:"unique_cves"`
	ToolCombinations map[string]int `json:"tool_combinations"`
}

type CVEBreakdown struct {
	ToolFindings      map[string]int `json:"tool_findings"`
	CVEInstances      map[string]int `json:"cve_instances"`
	CVERepoCounts     map[string]int `json:"cve_repo_counts"`
	TotalCVEInstances int            `json:"total_cve_instances"`
}

type UniqueFindings struct {
	Count           int       `json:"count"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
}

type Report struct {
	TotalRepositories  int                                      `json:"total_repositories"`
	Repositories       map[string]RepositorySummary             `json:"repositories"`
	ToolSummary        map[string]int                           `json:"tool_summary"`
	VulnerabilityTable []TableEntry                             `json:"vulnerability_table"`
	DiagnosticInfo     DiagnosticInfo                           `json:"diagnostic_info"`
	DuplicateCVEs      map[string]map[string][]DuplicateFinding `json:"duplicate_cves"`
	OverlapAnalysis    OverlapAnalysis                          `json:"overlap_analysis"`
	OverlapCounts      OverlapCounts                            `json:"overlap_counts"`
	CountVerification  CountVerification                        `json:"count_verification"`
	CVEBreakdown       CVEBreakdown                             `json:"cve_breakdown"`
	ToolComparison     map[string]map[string]UniqueFindings     `json:"tool_comparison"`
}

// results groups the findings by repository and tool. Scans of the same
// repository and tool are merged. Scans without findings are dropped.
type results map[string]map[string][]Finding

func group(scans []Scan) results {
	res := make(results)
	for _, s := range scans {
		if len(s.Findings) == 0 {
			continue
		}
		if _, ok := res[s.Repository]; !ok {
			res[s.Repository] = make(map[string][]Finding)
		}
		res[s.Repository][s.Tool] = append(res[s.Repository][s.Tool], s.Findings...)
	}
	return res
}

func (r results) cveSet(repo, tool string) utils.Set[string] {
	return utils.NewSet(utils.Map(r[repo][tool], func(f Finding) string { return f.ID })...)
}

func firstFinding(findings []Finding, id string) (Finding, bool) {
	return utils.Find(findings, func(f Finding) bool { return f.ID == id })
}

// Analyze compares the critical findings of all scans.
func Analyze(scans []Scan) Report {
	res := group(scans)
	repos := utils.SortedKeys(res)

	report := Report{
		TotalRepositories:  len(res),
		Repositories:       make(map[string]RepositorySummary),
		ToolSummary:        make(map[string]int),
		VulnerabilityTable: make([]TableEntry, 0),
		DuplicateCVEs:      make(map[string]map[string][]DuplicateFinding),
		ToolComparison:     make(map[string]map[string]UniqueFindings),
	}

	for _, repo := range repos {
		summary := RepositorySummary{
			ToolCounts:      make(map[string]int),
			Vulnerabilities: res[repo],
		}
		for tool, findings := range res[repo] {
			summary.TotalVulnerabilities += len(findings)
			summary.ToolCounts[tool] = len(findings)
			report.ToolSummary[tool] += len(findings)
		}
		report.Repositories[repo] = summary
	}

	report.VulnerabilityTable, report.DiagnosticInfo = vulnerabilityTable(res, repos)
	report.DuplicateCVEs = duplicateCVEs(res, repos)
	report.OverlapAnalysis = overlapAnalysis(res, repos)
	report.OverlapCounts = overlapCounts(report.VulnerabilityTable)
	report.CVEBreakdown = cveBreakdown(report.VulnerabilityTable)
	report.CountVerification = CountVerification{
		TotalEntries:     len(report.VulnerabilityTable),
		UniqueCVEs:       len(report.DiagnosticInfo.AllUniqueCVEs),
		ToolCombinations: report.OverlapCounts.ToolCombinations,
	}
	for _, total := range report.ToolSummary {
		report.CountVerification.TotalFromTools += total
	}
	report.ToolComparison = toolComparison(res, repos)
	return report
}

// vulnerabilityTable lists every cve once per repository together with the tools which found it.
func vulnerabilityTable(res results, repos []string) ([]TableEntry, DiagnosticInfo) {
	table := make([]TableEntry, 0)
	info := DiagnosticInfo{CVEsPerRepo: make(map[string]int)}
	allCVEs := utils.NewSet[string]()

	for _, repo := range repos {
		tools := utils.SortedKeys(res[repo])
		repoCVEs := utils.NewSet[string]()
		for _, tool := range tools {
			repoCVEs = repoCVEs.Union(res.cveSet(repo, tool))
			info.TotalVulnerabilitiesFound += len(res[repo][tool])
		}
		info.CVEsPerRepo[repo] = len(repoCVEs)
		allCVEs = allCVEs.Union(repoCVEs)

		for _, cve := range repoCVEs.Sorted() {
			entry := TableEntry{
				Number:        len(table) + 1,
				Repository:    repo,
				CVE:           cve,
				ComponentPURL: unknown,
				FoundBy:       make([]string, 0),
			}
			componentSet := false
			for _, tool := range tools {
				f, ok := firstFinding(res[repo][tool], cve)
				if !ok {
					continue
				}
				entry.FoundBy = append(entry.FoundBy, tool)
				if !componentSet {
					entry.ComponentPURL = f.ComponentPURL
					componentSet = true
				}
			}
			table = append(table, entry)
		}
	}

	info.AllUniqueCVEs = allCVEs.Sorted()
	info.UniqueCVEs = len(allCVEs)
	return table, info
}

// duplicateCVEs lists the cves reported more than once within a repository.
func duplicateCVEs(res results, repos []string) map[string]map[string][]DuplicateFinding {
	duplicates := make(map[string]map[string][]DuplicateFinding)
	for _, repo := range repos {
		byCVE := make(map[string][]DuplicateFinding)
		for _, tool := range utils.SortedKeys(res[repo]) {
			for _, f := range res[repo][tool] {
				byCVE[f.ID] = append(byCVE[f.ID], DuplicateFinding{CVE: f.ID, Tool: tool, Component: f.Component})
			}
		}
		for cve, findings := range byCVE {
			if len(findings) < 2 {
				continue
			}
			if _, ok := duplicates[repo]; !ok {
				duplicates[repo] = make(map[string][]DuplicateFinding)
			}
			duplicates[repo][cve] = findings
		}
	}
	return duplicates
}

func overlapAnalysis(res results, repos []string) OverlapAnalysis {
	analysis := OverlapAnalysis{
		ToolOverlaps: make(map[string]map[string]int),
		RepoOverlaps: make(map[string]map[string]int),
		CVEFrequency: make(map[string]int),
	}
	add := func(m map[string]map[string]int, a, b string, n int) {
		if _, ok := m[a]; !ok {
			m[a] = make(map[string]int)
		}
		m[a][b] += n
	}

	repoCVEs := make(map[string]utils.Set[string], len(repos))
	for _, repo := range repos {
		tools := utils.SortedKeys(res[repo])
		repoCVEs[repo] = utils.NewSet[string]()
		for _, tool := range tools {
			for _, f := range res[repo][tool] {
				analysis.CVEFrequency[f.ID]++
			}
			repoCVEs[repo] = repoCVEs[repo].Union(res.cveSet(repo, tool))
		}
		for _, pair := range utils.Pairs(tools) {
			overlap := len(res.cveSet(repo, pair[0]).Intersect(res.cveSet(repo, pair[1])))
			add(analysis.ToolOverlaps, pair[0], pair[1], overlap)
			add(analysis.ToolOverlaps, pair[1], pair[0], overlap)
		}
	}

	for _, pair := range utils.Pairs(repos) {
		overlap := len(repoCVEs[pair[0]].Intersect(repoCVEs[pair[1]]))
		if overlap > 0 {
			add(analysis.RepoOverlaps, pair[0], pair[1], overlap)
			add(analysis.RepoOverlaps, pair[1], pair[0], overlap)
		}
	}
	return analysis
}

func overlapCounts(table []TableEntry) OverlapCounts {
	counts := OverlapCounts{
		ToolCombinations: make(map[string]int),
		RepoOverlaps:     make(map[string]int),
		CVEFrequency:     make(map[string]int),
	}
	repoCVEs := make(map[string]utils.Set[string])
	for _, entry := range table {
		counts.ToolCombinations[strings.Join(utils.NewSet(entry.FoundBy...).Sorted(), ",")]++
		if _, ok := repoCVEs[entry.Repository]; !ok {
			repoCVEs[entry.Repository] = utils.NewSet[string]()
		}
		repoCVEs[entry.Repository].Add(entry.CVE)
		counts.CVEFrequency[entry.CVE]++
	}
	for _, pair := range utils.Pairs(utils.SortedKeys(repoCVEs)) {
		if overlap := len(repoCVEs[pair[0]].Intersect(repoCVEs[pair[1]])); overlap > 0 {
			counts.RepoOverlaps[pair[0]+","+pair[1]] = overlap
		}
	}
	return counts
}

func cveBreakdown(table []TableEntry) CVEBreakdown {
	breakdown := CVEBreakdown{
		ToolFindings:  make(map[string]int),
		CVEInstances:  make(map[string]int),
		CVERepoCounts: make(map[string]int),
	}
	cveRepos := make(map[string]utils.Set[string])
	for _, entry := range table {
		for _, tool := range entry.FoundBy {
			breakdown.ToolFindings[tool]++
			breakdown.CVEInstances[entry.CVE]++
			breakdown.TotalCVEInstances++
		}
		if _, ok := cveRepos[entry.CVE]; !ok {
			cveRepos[entry.CVE] = utils.NewSet[string]()
		}
		cveRepos[entry.CVE].Add(entry.Repository)
	}
	for cve, repos := range cveRepos {
		breakdown.CVERepoCounts[cve] = len(repos)
	}
	return breakdown
}

// toolComparison lists per repository the cves only a single tool found.
func toolComparison(res results, repos []string) map[string]map[string]UniqueFindings {
	comparison := make(map[string]map[string]UniqueFindings)
	for _, repo := range repos {
		tools := utils.SortedKeys(res[repo])
		unique := make(map[string]UniqueFindings)
		for _, tool := range tools {
			others := utils.NewSet[string]()
			for _, other := range tools {
				if other != tool {
					others = others.Union(res.cveSet(repo, other))
				}
			}
			ids := res.cveSet(repo, tool).Difference(others).Sorted()
			if len(ids) == 0 {
				continue
			}
			findings := make([]Finding, 0, len(ids))
			for _, id := range ids {
				f, _ := firstFinding(res[repo][tool], id)
				findings = append(findings, f)
			}
			unique[tool] = UniqueFindings{Count: len(ids), Vulnerabilities: findings}
		}
		if len(unique) > 0 {
			comparison[repo] = unique
		}
	}
	return comparison
}
