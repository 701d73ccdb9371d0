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
	"path/filepath"
	"time"

	"github.com/l3montree-dev/sbomgraph/analysis"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/spf13/cobra"
)

func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "analyze [graph.json]",
		Short:             "Compute the structural properties of dependency graphs",
		DisableAutoGenTag: true,
		Long: `Compute density, centrality, depth and the top dependencies of graphs.

With a graph file as argument only that graph is analyzed and printed.
Otherwise every graph below the output directory is analyzed, the properties
are written to <outputDir>/<repository>/graphProperties and a summary per tool
is written to the analysis directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Int("top", 20, "Number of entries printed per table")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.RuntimeBaseConfig
	layout := cfg.Layout()
	analyzer := analysis.NewAnalyzer(slog.Default())

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	cache, err := workspace.NewGraphCache(cfg.CacheSize)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		g, err := cache.Load(args[0])
		if err != nil {
			return err
		}
		printer.Record(os.Stdout, analyzer.Analyze(g, filepath.Base(args[0])), top)
		return nil
	}

	repos, err := layout.FindGraphs()
	if err != nil {
		return err
	}
	files := make([]workspace.GraphFile, 0)
	for _, repo := range repos {
		files = append(files, repo.Graphs...)
	}
	if len(files) == 0 {
		slog.Warn("no graphs found, run build first", "outputDir", layout.OutputDir)
		return nil
	}

	runner, bar := newBatchRunner(cfg.Workers, len(files))
	outcomes, err := workspace.Run(cmd.Context(), runner, files, func(f workspace.GraphFile) string {
		return f.Path
	}, func(_ context.Context, f workspace.GraphFile) (analysis.Record, error) {
		g, err := cache.Load(f.Path)
		if err != nil {
			return analysis.Record{}, err
		}
		record := analyzer.Analyze(g, filepath.Base(f.Path))
		return record, workspace.WriteJSON(layout.PropertiesPath(f.Repository, f.Stem), record)
	})
	bar.Finish() // nolint
	if err != nil {
		return err
	}

	records := workspace.Succeeded(outcomes)
	byTool := make(map[string][]analysis.Record)
	for _, r := range records {
		tool := workspace.ToolName(workspace.Stem(r.Name))
		byTool[tool] = append(byTool[tool], r)
	}

	summary := analysis.SummarizeTools(byTool)
	if err := workspace.WriteJSON(layout.ReportPath("tool comparison", time.Now()), summary); err != nil {
		return err
	}

	printer.ToolSummaries(os.Stdout, summary)
	printer.CommonDependencies(os.Stdout, analysis.CommonDependencies(records, top))
	slog.Info("analyzed graphs", "analyzed", len(records), "failed", len(files)-len(records))
	return nil
}
