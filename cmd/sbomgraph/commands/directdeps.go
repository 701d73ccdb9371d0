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

	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/directdeps"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/spf13/cobra"
)

func NewDirectDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "direct-deps <dir>",
		Short:             "Aggregate the declared python dependencies of cloned repositories",
		DisableAutoGenTag: true,
		Long: `Read the pyproject.toml of every repository directory below dir and count
how many repositories declare each package and in which versions. Poetry and
PEP 621 dependency tables are supported.`,
		Example: `  sbomgraph direct-deps ./repos`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDirectDeps,
	}

	cmd.Flags().Int("top", 20, "Number of packages printed")
	return cmd
}

func runDirectDeps(cmd *cobra.Command, args []string) error {
	layout := config.RuntimeBaseConfig.Layout()

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	projects, err := directdeps.LoadProjects(slog.Default(), args[0])
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		slog.Warn("no pyproject.toml found", "dir", args[0])
		return nil
	}

	now := time.Now()
	report := directdeps.NewReport(projects, now)
	path := layout.ReportPath("direct dependency analysis", now)
	if err := workspace.WriteJSON(path, report); err != nil {
		return err
	}

	printer.DirectDependencies(os.Stdout, report, top)
	slog.Info("wrote direct dependency analysis", "packages", report.TotalPackages, "path", path)
	return nil
}
