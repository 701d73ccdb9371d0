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
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/printer"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/vulns"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/spf13/cobra"
)

func NewVulnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "vulns <dir>",
		Short:             "Compare the critical vulnerabilities reported by the tools",
		DisableAutoGenTag: true,
		Long: `Read every CycloneDX document below dir and compare the vulnerabilities
with a critical rating. The directory containing a document is its repository,
the tool (trivy, syft or cdxgen) is detected from the file name.`,
		Example: `  sbomgraph vulns ./vuln_boms`,
		Args:    cobra.ExactArgs(1),
		RunE:    runVulns,
	}
	return cmd
}

func runVulns(cmd *cobra.Command, args []string) error {
	layout := config.RuntimeBaseConfig.Layout()

	sboms, err := workspace.FindSBOMs(args[0])
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Extracting critical vulnerabilities"
	s.Start()

	scans := make([]vulns.Scan, 0, len(sboms))
	for _, sbom := range sboms {
		findings, err := readFindings(sbom.Path)
		if err != nil {
			slog.Warn("skipping sbom", "path", sbom.Path, "err", err)
			continue
		}
		scans = append(scans, vulns.Scan{
			Repository: sbom.Repository,
			Tool:       vulns.ToolFromFileName(filepath.Base(sbom.Path)),
			Findings:   findings,
		})
	}
	report := vulns.Analyze(scans)
	s.Stop()

	path := layout.ReportPath("vulnerability analysis", time.Now())
	if err := workspace.WriteJSON(path, report); err != nil {
		return err
	}

	printer.Vulnerabilities(os.Stdout, report)
	slog.Info("wrote vulnerability analysis", "repositories", report.TotalRepositories, "path", path)
	return nil
}

func readFindings(path string) ([]vulns.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bom, err := graph.DecodeCycloneDX(f)
	if err != nil {
		return nil, err
	}
	return vulns.Extract(bom), nil
}
