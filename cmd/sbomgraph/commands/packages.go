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
	"time"

	"github.com/l3montree-dev/sbomgraph/analysis"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/spf13/cobra"
)

func NewPackagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "packages",
		Short:             "Analyze package popularity and versions across repositories",
		DisableAutoGenTag: true,
		Long: `Aggregate the persisted graph properties of all repositories.

Packages are ranked by the number of repositories depending on them and by
their centrality. The versions of every package are listed per ecosystem. Run
analyze first, the report is written to the analysis directory.`,
		Args: cobra.NoArgs,
		RunE: runPackages,
	}

	cmd.Flags().Int("top", 20, "Number of entries printed per table")
	return cmd
}

func runPackages(cmd *cobra.Command, args []string) error {
	layout := config.RuntimeBaseConfig.Layout()

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	paths, err := layout.FindRecords()
	if err != nil {
		return err
	}
	records := make([]analysis.Record, 0, len(paths))
	for _, path := range paths {
		record, err := workspace.LoadRecord(path)
		if err != nil {
			slog.Warn("skipping analysis record", "path", path, "err", err)
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		slog.Warn("no analysis records found, run analyze first", "outputDir", layout.OutputDir)
		return nil
	}

	now := time.Now()
	report := analysis.NewPackageReport(records, now)
	path := layout.ReportPath("package analysis", now)
	if err := workspace.WriteJSON(path, report); err != nil {
		return err
	}

	printer.Packages(os.Stdout, report, top)
	slog.Info("wrote package analysis", "packages", report.TotalPackages, "path", path)
	return nil
}
