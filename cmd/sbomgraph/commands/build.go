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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/spf13/cobra"
)

type buildResult struct {
	sbom   workspace.SBOMFile
	nodes  int
	edges  int
	report graph.BuildReport
}

func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "build [sbom.json...]",
		Short:             "Build dependency graphs from CycloneDX SBOMs",
		DisableAutoGenTag: true,
		Long: `Build a dependency graph for every given CycloneDX SBOM.

Without arguments every .json file below the sbom directory is used. The
directory containing an sbom is its repository, the tool is derived from the
file name (<repository>&<tool>.json). Graphs are written to
<outputDir>/<repository>/json/<stem>_graph.json.`,
		Example: `  # Build all graphs
  sbomgraph build --mermaid

  # Build a single graph
  sbomgraph build standardized_boms/repo/repo&trivy.json`,
		RunE: runBuild,
	}

	cmd.Flags().Bool("mermaid", false, "Also render every graph as mermaid flowchart")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := config.RuntimeBaseConfig
	layout := cfg.Layout()

	mermaid, err := cmd.Flags().GetBool("mermaid")
	if err != nil {
		return err
	}

	var sboms []workspace.SBOMFile
	if len(args) > 0 {
		sboms = utils.Map(args, workspace.NewSBOMFile)
	} else {
		sboms, err = workspace.FindSBOMs(layout.SBOMDir)
		if err != nil {
			return err
		}
	}
	if len(sboms) == 0 {
		slog.Warn("no sboms found", "sbomDir", layout.SBOMDir)
		return nil
	}

	runner, bar := newBatchRunner(cfg.Workers, len(sboms))
	outcomes, err := workspace.Run(cmd.Context(), runner, sboms, func(s workspace.SBOMFile) string {
		return s.Path
	}, func(_ context.Context, s workspace.SBOMFile) (buildResult, error) {
		return buildGraph(layout, s, mermaid)
	})
	bar.Finish() // nolint
	if err != nil {
		return err
	}

	built := workspace.Succeeded(outcomes)
	printer.BuildResults(os.Stdout, utils.Map(built, func(r buildResult) table.Row {
		return table.Row{r.sbom.Stem, r.nodes, r.edges, len(r.report.MissingComponents), len(r.report.DisconnectedComponents)}
	}))
	slog.Info("built graphs", "built", len(built), "failed", len(sboms)-len(built), "outputDir", layout.OutputDir)
	return nil
}

func buildGraph(layout workspace.Layout, s workspace.SBOMFile, mermaid bool) (buildResult, error) {
	g, report, err := readCycloneDX(s.Path)
	if err != nil {
		return buildResult{}, err
	}

	f, err := workspace.Create(layout.GraphPath(s.Repository, s.Stem))
	if err != nil {
		return buildResult{}, err
	}
	defer f.Close()
	if err := graph.Encode(f, g); err != nil {
		return buildResult{}, err
	}

	if mermaid {
		if err := workspace.WriteFile(layout.MermaidPath(s.Repository, s.Stem), []byte(g.RenderToMermaid())); err != nil {
			return buildResult{}, err
		}
	}

	return buildResult{sbom: s, nodes: g.NumNodes(), edges: g.NumEdges(), report: report}, nil
}
