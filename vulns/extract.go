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

// Package vulns compares the critical vulnerabilities different scanners
// report for the same repositories.
package vulns

import (
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomgraph/utils"
)

const (
	unknown       = "unknown"
	noDescription = "No description"
)

var knownTools = []string{"trivy", "syft", "cdxgen"}

// Finding is a critical vulnerability of a single component.
type Finding struct {
	ID               string `json:"id"`
	Component        string `json:"component"`
	ComponentVersion string `json:"component_version"`
	ComponentType    string `json:"component_type"`
	ComponentPURL    string `json:"component_purl"`
	Description      string `json:"description"`
}

// ToolFromFileName detects the scanner by its name inside the file name.
func ToolFromFileName(fileName string) string {
	if tool, ok := utils.Find(knownTools, func(tool string) bool {
		return strings.Contains(fileName, tool)
	}); ok {
		return tool
	}
	return unknown
}

func isCritical(severity cdx.Severity) bool {
	return strings.EqualFold(string(severity), "critical")
}

type componentDetails struct {
	name    string
	version string
	typ     string
	purl    string
}

var unknownComponent = componentDetails{name: unknown, version: unknown, typ: unknown, purl: unknown}

// Extract returns every vulnerability with at least one critical rating.
// The affected component is resolved through the first affects reference.
func Extract(bom *cdx.BOM) []Finding {
	findings := make([]Finding, 0)
	if bom == nil || bom.Vulnerabilities == nil {
		return findings
	}

	components := make(map[string]componentDetails)
	if bom.Components != nil {
		for _, c := range *bom.Components {
			if c.BOMRef == "" {
				continue
			}
			components[c.BOMRef] = componentDetails{
				name:    utils.FirstNonEmpty(c.Name, unknown),
				version: utils.FirstNonEmpty(c.Version, unknown),
				typ:     utils.FirstNonEmpty(string(c.Type), unknown),
				purl:    utils.FirstNonEmpty(c.PackageURL, unknown),
			}
		}
	}

	for _, v := range *bom.Vulnerabilities {
		if v.Ratings == nil || !utils.Any(*v.Ratings, func(r cdx.VulnerabilityRating) bool {
			return isCritical(r.Severity)
		}) {
			continue
		}

		details := unknownComponent
		if v.Affects != nil && len(*v.Affects) > 0 {
			if d, ok := components[(*v.Affects)[0].Ref]; ok {
				details = d
			}
		}

		findings = append(findings, Finding{
			ID:               utils.FirstNonEmpty(v.ID, unknown),
			Component:        details.name,
			ComponentVersion: details.version,
			ComponentType:    details.typ,
			ComponentPURL:    details.purl,
			Description:      utils.FirstNonEmpty(v.Description, noDescription),
		})
	}
	return findings
}
