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

package commands

import (
	"log/slog"
	"os"

	"github.com/l3montree-dev/sbomgraph/comparison"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/schollz/progressbar/v3"
)

// newBatchRunner returns a runner which advances a progress bar of total units.
func newBatchRunner(workers, total int) (*workspace.Runner, *progressbar.ProgressBar) {
	bar := progressbar.Default(int64(total))
	runner := workspace.NewRunner(slog.Default(), workers)
	runner.OnDone = func() {
		bar.Add(1) // nolint
	}
	return runner, bar
}

func readCycloneDX(path string) (*graph.Graph, graph.BuildReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, graph.BuildReport{}, err
	}
	defer f.Close()

	bom, err := graph.DecodeCycloneDX(f)
	if err != nil {
		return nil, graph.BuildReport{}, err
	}
	return graph.NewBuilder(slog.Default()).Build(bom)
}

// loadToolGraphs loads every graph of a repository. Graphs which cannot be read are skipped.
func loadToolGraphs(cache *workspace.GraphCache, repo workspace.RepositoryGraphs) []comparison.ToolGraph {
	graphs := make([]comparison.ToolGraph, 0, len(repo.Graphs))
	for _, file := range repo.Graphs {
		g, err := cache.Load(file.Path)
		if err != nil {
			slog.Warn("skipping graph", "path", file.Path, "err", err)
			continue
		}
		graphs = append(graphs, comparison.ToolGraph{Tool: file.Tool, Graph: g})
	}
	return graphs
}
