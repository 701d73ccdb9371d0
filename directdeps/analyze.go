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

package directdeps

import (
	"cmp"
	"slices"
	"time"

	"github.com/l3montree-dev/sbomgraph/utils"
)

type PackageStats struct {
	Package        string   `json:"package"`
	Repos          int      `json:"repos"`
	UniqueVersions int      `json:"unique_versions"`
	Versions       []string `json:"versions"`
	Occurrences    int      `json:"occurrences"`
	RepoList       []string `json:"repo_list"`
}

type Report struct {
	Timestamp         string         `json:"timestamp"`
	TotalPackages     int            `json:"total_packages"`
	TotalRepositories int            `json:"total_repositories"`
	Packages          []PackageStats `json:"packages"`
}

type accumulator struct {
	repos       utils.Set[string]
	versions    utils.Set[string]
	occurrences int
}

// Analyze counts every direct and dev dependency by its base name. The result
// is sorted by the number of repositories, then by occurrences, both descending.
func Analyze(projects []Project) []PackageStats {
	stats := make(map[string]*accumulator)
	for _, project := range projects {
		for _, req := range slices.Concat(project.Dependencies, project.DevDependencies) {
			name := BaseName(req.Name)
			acc, ok := stats[name]
			if !ok {
				acc = &accumulator{repos: utils.NewSet[string](), versions: utils.NewSet[string]()}
				stats[name] = acc
			}
			acc.repos.Add(project.Repository)
			acc.versions.Add(req.Name + req.Version)
			acc.occurrences++
		}
	}

	result := make([]PackageStats, 0, len(stats))
	for name, acc := range stats {
		result = append(result, PackageStats{
			Package:        name,
			Repos:          len(acc.repos),
			UniqueVersions: len(acc.versions),
			Versions:       acc.versions.Sorted(),
			Occurrences:    acc.occurrences,
			RepoList:       acc.repos.Sorted(),
		})
	}
	slices.SortFunc(result, func(a, b PackageStats) int {
		return cmp.Or(
			cmp.Compare(b.Repos, a.Repos),
			cmp.Compare(b.Occurrences, a.Occurrences),
			cmp.Compare(a.Package, b.Package),
		)
	})
	return result
}

func NewReport(projects []Project, now time.Time) Report {
	packages := Analyze(projects)
	return Report{
		Timestamp:         now.Format(utils.ReportTimestampLayout),
		TotalPackages:     len(packages),
		TotalRepositories: len(projects),
		Packages:          packages,
	}
}
