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
	"cmp"
	"slices"
	"time"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/normalize"
	"github.com/l3montree-dev/sbomgraph/utils"
)

type PackagePopularity struct {
	PURL          string   `json:"purl"`
	Names         []string `json:"names"`
	BOMRefs       []string `json:"bom_refs"`
	Repos         int      `json:"repos"`
	AvgCentrality float64  `json:"avg_centrality"`
	MaxCentrality float64  `json:"max_centrality"`
	AvgDependents float64  `json:"avg_dependents"`
	MaxDependents int      `json:"max_dependents"`
	RepoList      []string `json:"repo_list"`
}

type PackageVersions struct {
	BasePURL       string   `json:"base_purl"`
	Names          []string `json:"names"`
	BOMRefs        []string `json:"bom_refs"`
	UniqueVersions int      `json:"unique_versions"`
	Versions       []string `json:"versions"`
	TotalCount     int      `json:"total_count"`
	Repos          int      `json:"repos"`
	PURLs          []string `json:"purls"`
}

// PackageReport is the persisted cross repository package analysis.
type PackageReport struct {
	Timestamp        string              `json:"timestamp"`
	TotalPackages    int                 `json:"total_packages"`
	PopularitySorted []PackagePopularity `json:"popularity_sorted"`
	CentralitySorted []PackagePopularity `json:"centrality_sorted"`
	VersionAnalysis  []PackageVersions   `json:"version_analysis"`
}

func NewPackageReport(records []Record, now time.Time) PackageReport {
	popularity := Popularity(records)
	centrality := slices.Clone(popularity)
	slices.SortStableFunc(centrality, func(a, b PackagePopularity) int {
		return cmp.Compare(b.AvgCentrality, a.AvgCentrality)
	})
	return PackageReport{
		Timestamp:        now.Format(utils.ReportTimestampLayout),
		TotalPackages:    len(popularity),
		PopularitySorted: popularity,
		CentralitySorted: centrality,
		VersionAnalysis:  Versions(records),
	}
}

// packageOccurrence is a single appearance of a package inside a record.
type packageOccurrence struct {
	purl       string
	name       string
	bomRef     string
	centrality float64
	// dependents is nil for the max central node which does not carry them
	dependents *int
}

// occurrences lists the max central node (if it is a dependency) and every top dependency.
// Wheel archives are skipped.
func occurrences(record Record) []packageOccurrence {
	res := make([]packageOccurrence, 0, len(record.TopDependencies)+1)
	if c := record.MaxCentralNode; c != nil && c.Type == string(graph.NodeTypeDependency) && !normalize.IsWheelFile(c.PURL) {
		res = append(res, packageOccurrence{
			purl:       c.PURL,
			name:       c.Name,
			bomRef:     c.BOMRef,
			centrality: c.Centrality,
		})
	}
	for _, dep := range record.TopDependencies {
		if normalize.IsWheelFile(dep.PURL) {
			continue
		}
		res = append(res, packageOccurrence{
			purl:       dep.PURL,
			name:       dep.Name,
			bomRef:     dep.BOMRef,
			centrality: dep.Centrality,
			dependents: utils.Ptr(dep.Dependents),
		})
	}
	return res
}

// Popularity aggregates every package over all records. Sorted by the number of
// repositories and the average dependents, both descending.
func Popularity(records []Record) []PackagePopularity {
	type stats struct {
		centrality []float64
		dependents []float64
		maxDeps    int
		repos      utils.Set[string]
		names      utils.Set[string]
		bomRefs    utils.Set[string]
	}
	packages := make(map[string]*stats)

	for _, record := range records {
		for _, o := range occurrences(record) {
			s, ok := packages[o.purl]
			if !ok {
				s = &stats{repos: utils.NewSet[string](), names: utils.NewSet[string](), bomRefs: utils.NewSet[string]()}
				packages[o.purl] = s
			}
			s.centrality = append(s.centrality, o.centrality)
			if o.dependents != nil {
				s.dependents = append(s.dependents, float64(*o.dependents))
				s.maxDeps = max(s.maxDeps, *o.dependents)
			}
			s.repos.Add(record.Name)
			if o.name != "" {
				s.names.Add(o.name)
			}
			if o.bomRef != "" {
				s.bomRefs.Add(o.bomRef)
			}
		}
	}

	res := make([]PackagePopularity, 0, len(packages))
	for purl, s := range packages {
		res = append(res, PackagePopularity{
			PURL:          purl,
			Names:         s.names.Sorted(),
			BOMRefs:       s.bomRefs.Sorted(),
			Repos:         len(s.repos),
			AvgCentrality: utils.Mean(s.centrality),
			MaxCentrality: slices.Max(s.centrality),
			AvgDependents: utils.Mean(s.dependents),
			MaxDependents: s.maxDeps,
			RepoList:      s.repos.Sorted(),
		})
	}
	slices.SortFunc(res, func(a, b PackagePopularity) int {
		if c := cmp.Compare(b.Repos, a.Repos); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AvgDependents, a.AvgDependents); c != 0 {
			return c
		}
		return cmp.Compare(a.PURL, b.PURL)
	})
	return res
}

// Versions groups all packages by their purl without version. Sorted by total
// count and the number of distinct versions, both descending. The versions of
// a package are ordered by the rules of its ecosystem.
func Versions(records []Record) []PackageVersions {
	type stats struct {
		versions utils.Set[string]
		total    int
		repos    utils.Set[string]
		names    utils.Set[string]
		bomRefs  utils.Set[string]
		purls    utils.Set[string]
	}
	packages := make(map[string]*stats)

	for _, record := range records {
		for _, o := range occurrences(record) {
			base, version := normalize.SplitPurl(o.purl)
			s, ok := packages[base]
			if !ok {
				s = &stats{
					versions: utils.NewSet[string](),
					repos:    utils.NewSet[string](),
					names:    utils.NewSet[string](),
					bomRefs:  utils.NewSet[string](),
					purls:    utils.NewSet[string](),
				}
				packages[base] = s
			}
			s.versions.Add(version)
			s.total++
			s.repos.Add(record.Name)
			s.purls.Add(o.purl)
			if o.name != "" {
				s.names.Add(o.name)
			}
			if o.bomRef != "" {
				s.bomRefs.Add(o.bomRef)
			}
		}
	}

	res := make([]PackageVersions, 0, len(packages))
	for base, s := range packages {
		versions := s.versions.Sorted()
		normalize.SortVersions(normalize.PurlType(base), versions)
		res = append(res, PackageVersions{
			BasePURL:       base,
			Names:          s.names.Sorted(),
			BOMRefs:        s.bomRefs.Sorted(),
			UniqueVersions: len(s.versions),
			Versions:       versions,
			TotalCount:     s.total,
			Repos:          len(s.repos),
			PURLs:          s.purls.Sorted(),
		})
	}
	slices.SortFunc(res, func(a, b PackageVersions) int {
		if c := cmp.Compare(b.TotalCount, a.TotalCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.UniqueVersions, a.UniqueVersions); c != 0 {
			return c
		}
		return cmp.Compare(a.BasePURL, b.BasePURL)
	})
	return res
}
