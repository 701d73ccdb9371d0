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
	"slices"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
)

const fallbackRootRef = "root"

// RootRef returns the bom-ref of the metadata component.
func RootRef(bom *cdx.BOM) (string, bool) {
	if bom == nil || bom.Metadata == nil || bom.Metadata.Component == nil {
		return "", false
	}
	if bom.Metadata.Component.BOMRef == "" {
		return fallbackRootRef, true
	}
	return bom.Metadata.Component.BOMRef, true
}

// EnsureRootDependency adds a dependency entry for the metadata component if
// the bom has dependencies but none of them starts at the root.
// The root then depends on every ref which is never the target of another dependency.
// Some scanners (syft) do not write this entry.
// Returns true if the bom was modified.
func EnsureRootDependency(bom *cdx.BOM) bool {
	rootRef, ok := RootRef(bom)
	if !ok {
		return false
	}
	if bom.Dependencies == nil || len(*bom.Dependencies) == 0 {
		return false
	}

	refs := make(map[string]struct{})
	targets := make(map[string]struct{})
	for _, dep := range *bom.Dependencies {
		if dep.Ref == rootRef {
			// there is already a root entry
			return false
		}
		refs[dep.Ref] = struct{}{}
		if dep.Dependencies == nil {
			continue
		}
		for _, target := range *dep.Dependencies {
			targets[target] = struct{}{}
		}
	}

	topLevel := make([]string, 0)
	for ref := range refs {
		if _, isTarget := targets[ref]; !isTarget {
			topLevel = append(topLevel, ref)
		}
	}
	slices.Sort(topLevel)

	bom.Metadata.Component.BOMRef = rootRef
	deps := append([]cdx.Dependency{{Ref: rootRef, Dependencies: &topLevel}}, *bom.Dependencies...)
	bom.Dependencies = &deps
	return true
}

// EnsureSerialNumber assigns a random urn:uuid serial number to a bom without a valid one.
// Returns true if the bom was modified.
func EnsureSerialNumber(bom *cdx.BOM) bool {
	if bom == nil {
		return false
	}
	if id, ok := strings.CutPrefix(bom.SerialNumber, "urn:uuid:"); ok {
		if _, err := uuid.Parse(id); err == nil {
			return false
		}
	}
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()
	return true
}
