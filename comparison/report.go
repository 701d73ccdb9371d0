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

package comparison

import (
	"encoding/json"
	"fmt"

	"github.com/l3montree-dev/sbomgraph/utils"
)

type CountWithPercentage struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type OverallStatistics struct {
	TotalDependencies   int                 `json:"total_dependencies"`
	CommonDependencies  CountWithPercentage `json:"common_dependencies"`
	MissingDependencies CountWithPercentage `json:"missing_dependencies"`
}

// PairwiseComparisons is keyed by the first and then the second tool of every pair.
type PairwiseComparisons map[string]map[string]PairwiseComparison

type Statistics struct {
	Overall             OverallStatistics              `json:"overall"`
	ToolSpecific        map[string]CountWithPercentage `json:"tool_specific"`
	PairwiseComparisons PairwiseComparisons            `json:"pairwise_comparisons"`
}

// Report is the persisted form of a Result.
type Report struct {
	Repository          string              `json:"repository"`
	Statistics          Statistics          `json:"statistics"`
	CommonDependencies  map[string][]string `json:"common_dependencies"`
	MissingDependencies map[string][]string `json:"missing_dependencies"`
	PairwiseComparisons PairwiseComparisons `json:"pairwise_comparisons"`
}

// AgreementRate is the share of common nodes of the pair relative to all nodes of the repository.
func (p PairwiseComparison) AgreementRate(totalDependencies int) float64 {
	return utils.Percentage(len(p.Common), totalDependencies)
}

// MarshalJSON writes the tool specific keys only_in_<tool>_count and only_in_<tool>_list.
func (p PairwiseComparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"common_dependencies":                     len(p.Common),
		fmt.Sprintf("only_in_%s_count", p.Tool1): len(p.OnlyInTool1),
		fmt.Sprintf("only_in_%s_count", p.Tool2): len(p.OnlyInTool2),
		"common_dependencies_list":                p.Common,
		fmt.Sprintf("only_in_%s_list", p.Tool1):  p.OnlyInTool1,
		fmt.Sprintf("only_in_%s_list", p.Tool2):  p.OnlyInTool2,
	})
}

func (r Result) Report() Report {
	total := r.TotalDependencies()

	pairwise := make(PairwiseComparisons, len(r.Tools))
	for _, tool := range r.Tools {
		pairwise[tool] = make(map[string]PairwiseComparison)
	}
	for _, p := range r.Pairwise {
		pairwise[p.Tool1][p.Tool2] = p
	}

	toolSpecific := make(map[string]CountWithPercentage, len(r.NodeCounts))
	for tool, count := range r.NodeCounts {
		toolSpecific[tool] = CountWithPercentage{
			Count:      count,
			Percentage: utils.Percentage(count, total),
		}
	}

	return Report{
		Repository: r.Repository,
		Statistics: Statistics{
			Overall: OverallStatistics{
				TotalDependencies: total,
				CommonDependencies: CountWithPercentage{
					Count:      len(r.Common),
					Percentage: utils.Round(utils.Percentage(len(r.Common), total), 1),
				},
				MissingDependencies: CountWithPercentage{
					Count:      len(r.Missing),
					Percentage: utils.Round(utils.Percentage(len(r.Missing), total), 1),
				},
			},
			ToolSpecific:        toolSpecific,
			PairwiseComparisons: pairwise,
		},
		CommonDependencies:  r.Common,
		MissingDependencies: r.Missing,
		PairwiseComparisons: pairwise,
	}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Report())
}
