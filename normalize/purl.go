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
	"net/url"
	"strings"

	"github.com/package-url/packageurl-go"
)

const UnknownVersion = "unknown"

// function to make purl look more visually appealing
func BeautifyPURL(pURL string) (string, error) {
	p, err := packageurl.FromString(pURL)
	if err != nil {
		return pURL, err
	}
	//if the namespace is empty we don't want any leading slashes
	if p.Namespace == "" {
		return p.Name, nil
	}
	return p.Namespace + "/" + p.Name, nil
}

func ToPurlWithoutVersion(purl packageurl.PackageURL) string {
	purl.Version = ""
	purl.Qualifiers = nil
	return unescape(purl.ToString())
}

// SplitPurl separates an identifier into its versionless base and its version.
// Identifiers which are no valid package urls are split at the last "@".
// The version is UnknownVersion if there is none.
func SplitPurl(identifier string) (base string, version string) {
	if p, err := packageurl.FromString(identifier); err == nil && p.Type != "" && p.Name != "" {
		version = p.Version
		if version == "" {
			version = UnknownVersion
		}
		return ToPurlWithoutVersion(p), version
	}

	at := strings.LastIndex(identifier, "@")
	if at <= 0 {
		return identifier, UnknownVersion
	}
	return identifier[:at], identifier[at+1:]
}

// PurlType returns the package type of a package url or "" for other identifiers.
func PurlType(identifier string) string {
	p, err := packageurl.FromString(identifier)
	if err != nil {
		return ""
	}
	return p.Type
}

// IsWheelFile reports identifiers which point to a python wheel archive
// instead of a package. Those are metadata artifacts of some scanners.
func IsWheelFile(identifier string) bool {
	return strings.HasSuffix(identifier, ".whl")
}

func unescape(purl string) string {
	unescaped, err := url.PathUnescape(purl)
	if err != nil {
		return purl
	}
	return unescaped
}
