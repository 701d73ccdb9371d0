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
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/similarity"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewSimilarityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "similarity",
		Short:             "Score the structural similarity of the graphs of each repository",
		DisableAutoGenTag: true,
		Long: `Compute the Weisfeiler-Lehman subtree kernel for every pair of tools of a
repository. The results are written to
<analysisDir>/graph_kernel_analysis_results.csv.

With --summarize an existing result file is read and summarized instead.`,
		Args: cobra.NoArgs,
		RunE: runSimilarity,
	}

	cmd.Flags().Int("wlIterations", 3, "Number of Weisfeiler-Lehman relabeling iterations")
	cmd.Flags().Bool("summarize", false, "Only summarize the existing result file")
	return cmd
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	cfg := config.RuntimeBaseConfig
	layout := cfg.Layout()

	summarize, err := cmd.Flags().GetBool("summarize")
	if err != nil {
		return err
	}
	if summarize {
		f, err := os.Open(layout.KernelResultsPath())
		if err != nil {
			return errors.Wrap(err, "could not open kernel results, run similarity first")
		}
		defer f.Close()
		results, err := similarity.ReadCSV(f)
		if err != nil {
			return err
		}
		printer.KernelResults(os.Stdout, results, similarity.Summarize(results))
		return nil
	}

	repos, err := layout.FindGraphs()
	if err != nil {
		return err
	}
	cache, err := workspace.NewGraphCache(cfg.CacheSize)
	if err != nil {
		return err
	}

	runner, bar := newBatchRunner(cfg.Workers, len(repos))
	outcomes, err := workspace.Run(cmd.Context(), runner, repos, func(r workspace.RepositoryGraphs) string {
		return r.Repository
	}, func(_ context.Context, repo workspace.RepositoryGraphs) ([]similarity.PairResult, error) {
		graphsByTool := make(map[string]*graph.Graph)
		for _, tg := range loadToolGraphs(cache, repo) {
			graphsByTool[tg.Tool] = tg.Graph
		}
		return similarity.Pairwise(repo.Repository, graphsByTool, cfg.WLIterations), nil
	})
	bar.Finish() // nolint
	if err != nil {
		return err
	}

	results := slices.Concat(workspace.Succeeded(outcomes)...)
	f, err := workspace.Create(layout.KernelResultsPath())
	if err != nil {
		return err
	}
	defer f.Close()
	if err := similarity.WriteCSV(f, results); err != nil {
		return err
	}

	printer.KernelResults(os.Stdout, results, similarity.Summarize(results))
	slog.Info("computed graph kernels", "pairs", len(results), "path", layout.KernelResultsPath())
	return nil
}
