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
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syftLikeBOM() *cdx.BOM {
	return &cdx.BOM{
		Metadata: &cdx.Metadata{
			Component: &cdx.Component{BOMRef: "app", Name: "app"},
		},
		Components: &[]cdx.Component{
			{BOMRef: "a", PackageURL: "pkg:pypi/a@1.0"},
			{BOMRef: "b", PackageURL: "pkg:pypi/b@1.0"},
			{BOMRef: "c", PackageURL: "pkg:pypi/c@1.0"},
		},
		Dependencies: &[]cdx.Dependency{
			{Ref: "b", Dependencies: &[]string{"c"}},
			{Ref: "a", Dependencies: &[]string{"c"}},
			{Ref: "c", Dependencies: &[]string{}},
		},
	}
}

func TestEnsureRootDependency(t *testing.T) {
	t.Run("should attach all top level refs to the root", func(t *testing.T) {
		bom := syftLikeBOM()

		modified := EnsureRootDependency(bom)

		assert.True(t, modified)
		require.Len(t, *bom.Dependencies, 4)
		root := (*bom.Dependencies)[0]
		assert.Equal(t, "app", root.Ref)
		assert.Equal(t, []string{"a", "b"}, *root.Dependencies)
	})

	t.Run("should not touch a bom which already has a root entry", func(t *testing.T) {
		bom := syftLikeBOM()
		deps := append(*bom.Dependencies, cdx.Dependency{Ref: "app", Dependencies: &[]string{"a"}})
		bom.Dependencies = &deps

		assert.False(t, EnsureRootDependency(bom))
		assert.Len(t, *bom.Dependencies, 4)
	})

	t.Run("should not touch a bom without dependencies", func(t *testing.T) {
		bom := syftLikeBOM()
		bom.Dependencies = nil

		assert.False(t, EnsureRootDependency(bom))
		assert.Nil(t, bom.Dependencies)
	})

	t.Run("should not touch a bom without metadata", func(t *testing.T) {
		bom := syftLikeBOM()
		bom.Metadata = nil

		assert.False(t, EnsureRootDependency(bom))
	})

	t.Run("should fall back to a root ref if the metadata component has none", func(t *testing.T) {
		bom := syftLikeBOM()
		bom.Metadata.Component.BOMRef = ""

		assert.True(t, EnsureRootDependency(bom))
		assert.Equal(t, "root", bom.Metadata.Component.BOMRef)
		assert.Equal(t, "root", (*bom.Dependencies)[0].Ref)
	})
}

func TestEnsureSerialNumber(t *testing.T) {
	t.Run("should keep a valid serial number", func(t *testing.T) {
		bom := &cdx.BOM{SerialNumber: "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"}
		assert.False(t, EnsureSerialNumber(bom))
		assert.Equal(t, "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79", bom.SerialNumber)
	})

	for _, serial := range []string{"", "urn:uuid:not-a-uuid", "3e671687-395b-41f5-a30f-a58921a69b79"} {
		t.Run("should replace the serial number "+serial, func(t *testing.T) {
			bom := &cdx.BOM{SerialNumber: serial}
			assert.True(t, EnsureSerialNumber(bom))
			assert.Regexp(t, `^urn:uuid:[0-9a-f-]{36}$`, bom.SerialNumber)
		})
	}

	t.Run("should ignore a nil bom", func(t *testing.T) {
		assert.False(t, EnsureSerialNumber(nil))
	})
}
