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

func TestConvertToSemver(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.2.3", "1.2.3"},
		{"v1.14.14", "1.14.14"},
		{"2:1.2.3", "1.2.3"},
		{"1.2.3~rc1", "1.2.3-rc1"},
		{"1.14", "1.14.0"},
		{"19.03.9", "19.3.9"},
		{"3.0-beta1", "3.0.0-beta1"},
		{"31.4.0-1.el5_11", "31.4.0-1.el5.11"},
		{"1.2.3+build1", "1.2.3+build1"},
		{"00.1", "0.1.0"},
		{"1:v1.2", "1.2.0"},
		{"1.2.3-rc1~beta1", "1.2.3-rc1-beta1"},
		{"1.0~rc1+git2", "1.0.0-rc1+git2"},
	}
	for _, tt := range tests {
		t.Run("should convert "+tt.input, func(t *testing.T) {
			actual, err := ConvertToSemver(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}

	t.Run("should fail on versions which cannot be converted", func(t *testing.T) {
		for _, v := range []string{"", "1.2.3.4", "abc", "1..2"} {
			_, err := ConvertToSemver(v)
			assert.Error(t, err, v)
		}
	})
}

func TestSortVersions(t *testing.T) {
	t.Run("should sort by semver for unknown ecosystems", func(t *testing.T) {
		versions := []string{"2.0", "1.10.0", UnknownVersion, "1.9.0"}
		SortVersions("pypi", versions)
		assert.Equal(t, []string{"1.9.0", "1.10.0", "2.0", UnknownVersion}, versions)
	})

	t.Run("should respect debian epochs", func(t *testing.T) {
		versions := []string{"1:1.0", "2.0"}
		SortVersions("deb", versions)
		assert.Equal(t, []string{"2.0", "1:1.0"}, versions)
	})

	t.Run("should compare rpm releases", func(t *testing.T) {
		versions := []string{"1.0-2.el8", "1.0-10.el8", "1.0-1.el8"}
		SortVersions("rpm", versions)
		assert.Equal(t, []string{"1.0-1.el8", "1.0-2.el8", "1.0-10.el8"}, versions)
	})

	t.Run("should compare alpine package revisions", func(t *testing.T) {
		versions := []string{"1.2.3-r1", "1.2.3-r0"}
		SortVersions("apk", versions)
		assert.Equal(t, []string{"1.2.3-r0", "1.2.3-r1"}, versions)
	})

	t.Run("should fall back to the string for equal versions", func(t *testing.T) {
		assert.Equal(t, -1, CompareVersions("npm", "1.0", "1.0.0"))
		assert.Equal(t, 0, CompareVersions("npm", "1.0.0", "1.0.0"))
	})
}

func TestPurlType(t *testing.T) {
	assert.Equal(t, "deb", PurlType("pkg:deb/debian/openssl@1.1.1"))
	assert.Equal(t, "", PurlType("not-a-purl"))
}
