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
	"regexp"
	"slices"
	"strings"

	apk "github.com/knqyf263/go-apk-version"
	deb "github.com/knqyf263/go-deb-version"
	rpm "github.com/knqyf263/go-rpm-version"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

var (
	validSemver           = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)
	versionInvalidCharsRe = regexp.MustCompile(`[^0-9.]`)
)

// ConvertToSemver brings a package version into semantic versioning format.
// Epochs and a "v" prefix are dropped, "~" starts a pre-release and missing
// segments are padded with 0.
func ConvertToSemver(originalVersion string) (string, error) {
	if originalVersion == "" {
		return "", errors.New("empty version")
	}

	version := originalVersion
	// remove epoch prefix if present (e.g., "2:1.2.3" -> "1.2.3")
	if idx := strings.Index(version, ":"); idx != -1 {
		version = version[idx+1:]
	}
	version = strings.TrimPrefix(version, "v")

	// extract build metadata (after "+") first, the rest is version core and pre-release
	var buildMetadata, preRelease string
	if idx := strings.Index(version, "+"); idx != -1 {
		buildMetadata = version[idx+1:]
		version = version[:idx]
	}
	// tilde versions are common in debian and rpm versioning (e.g., "1.2.3~rc1" -> "1.2.3-rc1")
	if idx := strings.Index(version, "~"); idx != -1 {
		preRelease = version[idx+1:]
		version = version[:idx]
	}
	// pre-release after "-", a tilde pre-release is appended to it
	if idx := strings.Index(version, "-"); idx != -1 {
		if preRelease != "" {
			preRelease = version[idx+1:] + "-" + preRelease
		} else {
			preRelease = version[idx+1:]
		}
		version = version[:idx]
	}
	// replace any "_" in preRelease with "."
	// this is needed for redhat versions like "31.4.0-1.el5_11"
	preRelease = strings.ReplaceAll(preRelease, "_", ".")

	// only digits and dots are allowed in the version core
	if versionInvalidCharsRe.MatchString(version) {
		return "", errors.Errorf("version contains invalid characters: %s", originalVersion)
	}

	// semver allows max 3 segments: major, minor, patch
	segments := strings.Split(version, ".")
	if len(segments) > 3 {
		return "", errors.Errorf("version has more than 3 segments: %s", originalVersion)
	}
	// remove leading zeros from each segment (e.g., "03" -> "3")
	for i, segment := range segments {
		if trimmed := strings.TrimLeft(segment, "0"); trimmed != "" {
			segments[i] = trimmed
		} else if segment != "" {
			// segment was all zeros (e.g., "00"), keep a single "0"
			segments[i] = "0"
		}
	}
	// pad missing segments with "0"
	for len(segments) < 3 {
		segments = append(segments, "0")
	}

	res := strings.Join(segments, ".")
	if preRelease != "" {
		res += "-" + preRelease
	}
	if buildMetadata != "" {
		res += "+" + buildMetadata
	}
	if !validSemver.MatchString(res) {
		return "", errors.Errorf("resulting semver is invalid: %s", res)
	}
	return res, nil
}

func compareSemver(a, b string) (int, error) {
	va, err := ConvertToSemver(a)
	if err != nil {
		return 0, err
	}
	vb, err := ConvertToSemver(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare("v"+va, "v"+vb), nil
}

// compareWith orders two versions with the comparison functions of a
// version parsing library.
func compareWith[V any](
	a, b string,
	newVersion func(string) (V, error),
	lessThan func(a, b V) bool,
	greaterThan func(a, b V) bool,
) (int, error) {
	va, err := newVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := newVersion(b)
	if err != nil {
		return 0, err
	}
	switch {
	case lessThan(va, vb):
		return -1, nil
	case greaterThan(va, vb):
		return 1, nil
	}
	return 0, nil
}

func versionComparator(purlType string) func(a, b string) (int, error) {
	switch purlType {
	case "deb":
		return func(a, b string) (int, error) {
			return compareWith(a, b, deb.NewVersion,
				func(a, b deb.Version) bool { return a.LessThan(b) },
				func(a, b deb.Version) bool { return a.GreaterThan(b) })
		}
	case "rpm":
		return func(a, b string) (int, error) {
			return compareWith(a, b, func(v string) (rpm.Version, error) { return rpm.NewVersion(v), nil },
				func(a, b rpm.Version) bool { return a.LessThan(b) },
				func(a, b rpm.Version) bool { return a.GreaterThan(b) })
		}
	case "apk":
		return func(a, b string) (int, error) {
			return compareWith(a, b, apk.NewVersion,
				func(a, b apk.Version) bool { return a.LessThan(b) },
				func(a, b apk.Version) bool { return a.GreaterThan(b) })
		}
	default:
		return compareSemver
	}
}

// CompareVersions orders two versions of a package of the given purl type.
// Versions which cannot be parsed sort after parsable ones and are compared
// lexicographically.
func CompareVersions(purlType, a, b string) int {
	compare := versionComparator(purlType)
	if c, err := compare(a, b); err == nil {
		if c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}

	_, errA := compare(a, a)
	_, errB := compare(b, b)
	switch {
	case errA == nil && errB != nil:
		return -1
	case errA != nil && errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// SortVersions sorts ascending using CompareVersions.
func SortVersions(purlType string, versions []string) {
	slices.SortFunc(versions, func(a, b string) int {
		return CompareVersions(purlType, a, b)
	})
}
