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
	"github.com/l3montree-dev/sbomgraph/comparison"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	minGraphs   int
	baseline    string
	firstVsRest bool
	allVsAll    bool
}

// repositoryComparison is printed once all repositories are compared.
// missed is only set with first-vs-rest.
type repositoryComparison struct {
	result   comparison.Result
	baseline string
	missed   map[string][]string
}

func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "compare",
		Short:             "Compare the dependencies found by the tools of each repository",
		DisableAutoGenTag: true,
		Long: `Compare the node sets of all graphs of a repository.

Every repository with at least minGraphs graphs is compared. With --specific
only the listed repositories are compared and two graphs are enough. The
result is written to <outputDir>/<repository>/graphProperties/dependency_comparison.json.`,
		Example: `  # Compare all repositories
  sbomgraph compare

  # Show what the gold standard missed
  sbomgraph compare --specific repo1 --first-vs-rest --baseline sbomgold`,
		Args: cobra.NoArgs,
		RunE: runCompare,
	}

	cmd.Flags().StringSlice("specific", nil, "Only compare these repositories")
	cmd.Flags().Bool("first-vs-rest", false, "List the dependencies the baseline tool did not find")
	cmd.Flags().Bool("all-vs-all", false, "List the dependencies every tool did not find")
	cmd.Flags().String("baseline", "", "Baseline tool of --first-vs-rest. Defaults to the first tool")
	cmd.Flags().Int("minGraphs", 3, "Minimum number of graphs a repository needs to be compared")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := config.RuntimeBaseConfig
	layout := cfg.Layout()

	specific, err := cmd.Flags().GetStringSlice("specific")
	if err != nil {
		return err
	}
	opts := compareOptions{minGraphs: cfg.MinGraphs, baseline: cfg.Baseline}
	if opts.firstVsRest, err = cmd.Flags().GetBool("first-vs-rest"); err != nil {
		return err
	}
	if opts.allVsAll, err = cmd.Flags().GetBool("all-vs-all"); err != nil {
		return err
	}

	repos, err := layout.FindGraphs()
	if err != nil {
		return err
	}
	if len(specific) > 0 {
		repos = slices.DeleteFunc(repos, func(r workspace.RepositoryGraphs) bool {
			return !slices.Contains(specific, r.Repository)
		})
		opts.minGraphs = 2
	}
	if len(repos) == 0 {
		slog.Warn("no repositories to compare", "outputDir", layout.OutputDir)
		return nil
	}

	cache, err := workspace.NewGraphCache(cfg.CacheSize)
	if err != nil {
		return err
	}
	comparator := comparison.NewComparator(slog.Default())

	runner, bar := newBatchRunner(cfg.Workers, len(repos))
	outcomes, err := workspace.Run(cmd.Context(), runner, repos, func(r workspace.RepositoryGraphs) string {
		return r.Repository
	}, func(_ context.Context, repo workspace.RepositoryGraphs) (*repositoryComparison, error) {
		return compareRepository(comparator, layout, loadToolGraphs(cache, repo), repo.Repository, opts)
	})
	bar.Finish() // nolint
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil || o.Value == nil {
			continue
		}
		printer.Comparison(os.Stdout, o.Value.result)
		if o.Value.missed != nil {
			printer.Missed(os.Stdout, o.Value.result.Repository, o.Value.baseline, o.Value.missed)
		}
	}
	return nil
}

// compareRepository writes the comparisons of a single repository. A repository
// with too few graphs is skipped and a nil result is returned.
// It runs on the worker goroutines and must not print.
func compareRepository(comparator *comparison.Comparator, layout workspace.Layout, graphs []comparison.ToolGraph, repository string, opts compareOptions) (*repositoryComparison, error) {
	result, err := comparator.Compare(repository, graphs, opts.minGraphs)
	if errors.Is(err, comparison.ErrInsufficientGraphs) {
		slog.Info("skipping repository", "repository", repository, "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := workspace.WriteJSON(layout.ComparisonPath(repository, workspace.ComparisonFileName), result); err != nil {
		return nil, err
	}
	res := &repositoryComparison{result: result}

	if opts.firstVsRest {
		res.baseline = opts.baseline
		if res.baseline == "" {
			res.baseline = graphs[0].Tool
		}
		missed, err := comparator.FirstVsRest(res.baseline, graphs)
		if err != nil {
			return nil, err
		}
		if err := workspace.WriteJSON(layout.ComparisonPath(repository, workspace.FirstVsRestFileName), missed); err != nil {
			return nil, err
		}
		res.missed = missed
	}

	if opts.allVsAll {
		missed, err := comparator.AllVsAll(graphs)
		if err != nil {
			return nil, err
		}
		if err := workspace.WriteJSON(layout.ComparisonPath(repository, workspace.AllVsAllFileName), missed); err != nil {
			return nil, err
		}
	}
	return res, nil
}
