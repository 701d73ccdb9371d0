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

	"github.com/stretchr/testify/assert"
)

func TestBeautifyPURL(t *testing.T) {
	t.Run("empty String should also return an empty string back", func(t *testing.T) {
		result, _ := BeautifyPURL("")
		assert.Equal(t, "", result)
	})
	t.Run("invalid purl format should also be returned unchanged", func(t *testing.T) {
		inputString := "this is definitely not a valid purl"
		result, err := BeautifyPURL(inputString)
		assert.Error(t, err)
		assert.Equal(t, inputString, result)
	})
	t.Run("should return only the namespace and the name of a valid purl and cut the rest", func(t *testing.T) {
		result, _ := BeautifyPURL("pkg:npm/@ory/integrations@v0.0.1")
		assert.Equal(t, "@ory/integrations", result)
	})
	t.Run("should return no leading slash if the namespace is empty", func(t *testing.T) {
		result, _ := BeautifyPURL("pkg:pypi/requests@2.31.0")
		assert.Equal(t, "requests", result)
	})
}

func TestSplitPurl(t *testing.T) {
	t.Run("should split a valid purl into base and version", func(t *testing.T) {
		base, version := SplitPurl("pkg:pypi/requests@2.31.0")
		assert.Equal(t, "pkg:pypi/requests", base)
		assert.Equal(t, "2.31.0", version)
	})

	t.Run("should drop the qualifiers from the base", func(t *testing.T) {
		base, version := SplitPurl("pkg:deb/debian/git@2.47.3?arch=amd64")
		assert.Equal(t, "pkg:deb/debian/git", base)
		assert.Equal(t, "2.47.3", version)
	})

	t.Run("should keep the namespace of scoped npm packages", func(t *testing.T) {
		base, version := SplitPurl("pkg:npm/%40ory/integrations@0.0.1")
		assert.Equal(t, "pkg:npm/@ory/integrations", base)
		assert.Equal(t, "0.0.1", version)
	})

	t.Run("should report an unknown version for a purl without version", func(t *testing.T) {
		base, version := SplitPurl("pkg:pypi/requests")
		assert.Equal(t, "pkg:pypi/requests", base)
		assert.Equal(t, UnknownVersion, version)
	})

	t.Run("should fall back to the last @ for identifiers which are no purls", func(t *testing.T) {
		base, version := SplitPurl("requests@2.0")
		assert.Equal(t, "requests", base)
		assert.Equal(t, "2.0", version)
	})

	t.Run("should return the raw identifier if there is no version at all", func(t *testing.T) {
		base, version := SplitPurl("some-ref-123")
		assert.Equal(t, "some-ref-123", base)
		assert.Equal(t, UnknownVersion, version)
	})
}

func TestIsWheelFile(t *testing.T) {
	assert.True(t, IsWheelFile("torch-2.0.0-cp311-linux_x86_64.whl"))
	assert.False(t, IsWheelFile("pkg:pypi/torch@2.0.0"))
}
