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

package normalize

import (
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["bomFormat", "specVersion"],
  "properties": {
    "bomFormat": {"const": "CycloneDX"}
  }
}`

func TestSchemaValidator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))

	validator, err := NewSchemaValidator(path)
	require.NoError(t, err)

	t.Run("should accept a valid bom", func(t *testing.T) {
		bom := cdx.NewBOM()
		bom.Metadata = &cdx.Metadata{Component: &cdx.Component{BOMRef: "app", Name: "app"}}
		assert.NoError(t, validator.Validate(bom))
	})

	t.Run("should reject a bom with a wrong format", func(t *testing.T) {
		bom := cdx.NewBOM()
		bom.BOMFormat = "SPDX"
		assert.Error(t, validator.Validate(bom))
	})

	t.Run("should fail for a missing schema", func(t *testing.T) {
		_, err := NewSchemaValidator(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
