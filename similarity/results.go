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

package similarity

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/pkg/errors"
)

var csvHeader = []string{"repo", "tool1", "tool2", "kernel_value", "normalized_kernel"}

type PairResult struct {
	Repo             string  `json:"repo"`
	Tool1            string  `json:"tool1"`
	Tool2            string  `json:"tool2"`
	KernelValue      int     `json:"kernel_value"`
	NormalizedKernel float64 `json:"normalized_kernel"`
}

type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// Pairwise scores every unordered pair of tools of a repository.
// Tools are paired in lexicographic order.
func Pairwise(repo string, graphsByTool map[string]*graph.Graph, h int) []PairResult {
	tools := utils.SortedKeys(graphsByTool)

	selfSimilarity := make(map[string]int, len(tools))
	for _, tool := range tools {
		g := graphsByTool[tool]
		selfSimilarity[tool] = Kernel(g, g, h)
	}

	results := make([]PairResult, 0, len(tools)*(len(tools)-1)/2)
	for _, pair := range utils.Pairs(tools) {
		kernel := Kernel(graphsByTool[pair[0]], graphsByTool[pair[1]], h)
		results = append(results, PairResult{
			Repo:             repo,
			Tool1:            pair[0],
			Tool2:            pair[1],
			KernelValue:      kernel,
			NormalizedKernel: Normalize(kernel, selfSimilarity[pair[0]], selfSimilarity[pair[1]]),
		})
	}
	return results
}

// Summarize aggregates the normalized kernels. Std is the sample standard deviation.
func Summarize(results []PairResult) Summary {
	values := utils.Map(results, func(r PairResult) float64 {
		return r.NormalizedKernel
	})
	return Summary{
		Mean:   utils.Mean(values),
		Median: utils.Median(values),
		Std:    utils.SampleStd(values),
	}
}

func WriteCSV(w io.Writer, results []PairResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "could not write csv header")
	}
	for _, r := range results {
		record := []string{
			r.Repo,
			r.Tool1,
			r.Tool2,
			strconv.Itoa(r.KernelValue),
			strconv.FormatFloat(r.NormalizedKernel, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "could not write csv record")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush csv")
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(r io.Reader) ([]PairResult, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "could not read csv")
	}
	if len(records) == 0 {
		return []PairResult{}, nil
	}

	results := make([]PairResult, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(csvHeader) {
			return nil, errors.Errorf("line %d has %d columns, expected %d", i+2, len(record), len(csvHeader))
		}
		kernel, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid kernel value in line %d", i+2)
		}
		normalized, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid normalized kernel in line %d", i+2)
		}
		results = append(results, PairResult{
			Repo:             record[0],
			Tool1:            record[1],
			Tool2:            record[2],
			KernelValue:      kernel,
			NormalizedKernel: normalized,
		})
	}
	return results, nil
}
