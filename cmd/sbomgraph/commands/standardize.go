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

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/l3montree-dev/sbomgraph/normalize"
	"github.com/l3montree-dev/sbomgraph/workspace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewStandardizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "standardize <in> <out>",
		Short:             "Add the missing root dependency entry to an SBOM",
		DisableAutoGenTag: true,
		Long: `Some tools do not write a dependency entry for the metadata component.
standardize adds an entry in which the root depends on every component that
is not a dependency of another component, assigns a serial number if the
sbom has no valid one and writes the result to out.

With --schema the result is validated against a CycloneDX JSON schema before
it is written.`,
		Example: `  sbomgraph standardize boms/repo/repo&syft.json standardized_boms/repo/repo&syft.json`,
		Args:    cobra.ExactArgs(2),
		RunE:    runStandardize,
	}

	cmd.Flags().String("schema", "", "Validate the result against this JSON schema (file path or url), e.g. "+normalize.CycloneDXSchemaURL)
	return cmd
}

func runStandardize(cmd *cobra.Command, args []string) error {
	schema, err := cmd.Flags().GetString("schema")
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	bom, err := graph.DecodeCycloneDX(in)
	if err != nil {
		return err
	}
	if normalize.EnsureRootDependency(bom) {
		slog.Info("added root dependency entry", "path", args[0])
	}
	if normalize.EnsureSerialNumber(bom) {
		slog.Debug("assigned serial number", "path", args[0], "serialNumber", bom.SerialNumber)
	}

	if schema != "" {
		validator, err := normalize.NewSchemaValidator(schema)
		if err != nil {
			return err
		}
		if err := validator.Validate(bom); err != nil {
			return err
		}
	}

	out, err := workspace.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	encoder := cdx.NewBOMEncoder(out, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(bom); err != nil {
		return errors.Wrap(err, "could not encode sbom")
	}
	return nil
}
