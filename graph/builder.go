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

package graph

import (
	"io"
	"log/slog"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomgraph/normalize"
	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/pkg/errors"
)

var (
	ErrMissingMetadata      = errors.New("sbom does not contain metadata")
	ErrMissingRootComponent = errors.New("sbom metadata does not contain a component")
)

// BuildReport collects the tolerated inconsistencies of a single build.
type BuildReport struct {
	// MissingComponents are referenced bom-refs without a declared component. Sorted.
	MissingComponents []string
	// DisconnectedComponents are declared bom-refs which are not reachable from the root.
	// In declaration order.
	DisconnectedComponents []string
}

type componentInfo struct {
	id     string
	name   string
	bomRef string
}

type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// DecodeCycloneDX reads a CycloneDX json document.
func DecodeCycloneDX(r io.Reader) (*cdx.BOM, error) {
	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(r, cdx.BOMFileFormatJSON).Decode(bom); err != nil {
		return nil, errors.Wrap(err, "could not decode cyclonedx document")
	}
	return bom, nil
}

// FromCycloneDX builds the graph with the default logger.
func FromCycloneDX(bom *cdx.BOM) (*Graph, error) {
	g, _, err := NewBuilder(nil).Build(bom)
	return g, err
}

// Build turns the bom into a dependency graph.
//
// The root component becomes the node RootNodeID on level 0. Every component
// reachable from the root through the dependencies gets its BFS distance as level.
// Declared components which are not reachable are attached to the root with a
// disconnected edge on level 1, so no declared component gets lost.
func (b *Builder) Build(bom *cdx.BOM) (*Graph, BuildReport, error) {
	report := BuildReport{
		MissingComponents:      []string{},
		DisconnectedComponents: []string{},
	}
	if bom == nil || bom.Metadata == nil {
		return nil, report, ErrMissingMetadata
	}
	if bom.Metadata.Component == nil {
		return nil, report, ErrMissingRootComponent
	}

	rootComponent := bom.Metadata.Component
	rootRef, _ := normalize.RootRef(bom)

	g := New()
	g.SetAttribute(AttrRootName, rootComponent.Name)
	g.SetAttribute(AttrRootPURL, utils.FirstNonEmpty(rootComponent.PackageURL, rootComponent.Name))
	g.SetAttribute(AttrRootBOMRef, rootRef)
	g.AddNode(Node{
		ID:     RootNodeID,
		Name:   RootNodeID,
		Type:   NodeTypeRoot,
		Level:  0,
		BOMRef: rootRef,
	})

	components, declared := b.componentLookup(bom)
	dependsOn := dependencyLookup(bom)

	type queueItem struct {
		ref   string
		level int
	}

	// resolve maps a bom-ref to its node identity
	missing := make(map[string]struct{})
	resolve := func(ref string) componentInfo {
		if ref == rootRef {
			return componentInfo{id: RootNodeID, name: RootNodeID, bomRef: rootRef}
		}
		if info, ok := components[ref]; ok {
			return info
		}
		if _, alreadyReported := missing[ref]; !alreadyReported {
			missing[ref] = struct{}{}
			b.logger.Warn("dependency references a component which is not declared", "ref", ref)
		}
		return componentInfo{id: ref, name: ref, bomRef: ref}
	}

	// enqueued keeps every ref at most once in the queue, processed holds the refs
	// which were already expanded. dependencies on processed refs are back-edges
	// and do not produce an edge.
	enqueued := map[string]struct{}{rootRef: {}}
	processed := make(map[string]struct{})
	queue := []queueItem{{ref: rootRef, level: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed[current.ref] = struct{}{}
		if len(processed)%100 == 0 {
			b.logger.Debug("processing dependencies", "processed", len(processed), "queued", len(queue))
		}

		currentInfo := resolve(current.ref)
		for _, target := range dependsOn[current.ref] {
			// covers self references and references back to the root
			if _, done := processed[target]; done {
				continue
			}

			targetInfo := resolve(target)
			g.AddNode(Node{
				ID:     targetInfo.id,
				Name:   targetInfo.name,
				Type:   NodeTypeDependency,
				Level:  current.level + 1,
				BOMRef: targetInfo.bomRef,
			})
			if targetInfo.id != currentInfo.id {
				g.AddEdge(currentInfo.id, targetInfo.id, EdgeTypeDependsOn)
			}

			if _, ok := enqueued[target]; ok {
				continue
			}
			enqueued[target] = struct{}{}
			queue = append(queue, queueItem{ref: target, level: current.level + 1})
		}
	}

	for _, ref := range declared {
		if _, connected := processed[ref]; connected {
			continue
		}
		report.DisconnectedComponents = append(report.DisconnectedComponents, ref)

		info := components[ref]
		if g.HasNode(info.id) {
			// another bom-ref with the same package url is already part of the graph
			continue
		}
		g.AddNode(Node{
			ID:     info.id,
			Name:   info.name,
			Type:   NodeTypeDisconnected,
			Level:  1,
			BOMRef: info.bomRef,
		})
		g.AddEdge(RootNodeID, info.id, EdgeTypeDisconnectedDependsOn)
	}

	if len(report.DisconnectedComponents) > 0 {
		b.logger.Warn("found components which are not reachable from the root", "count", len(report.DisconnectedComponents))
	}

	report.MissingComponents = utils.SortedKeys(missing)

	b.logger.Debug("built dependency graph", "nodes", g.NumNodes(), "edges", g.NumEdges())
	return g, report, nil
}

// componentLookup maps every declared bom-ref to its node identity.
// The returned slice contains the declared bom-refs in document order.
func (b *Builder) componentLookup(bom *cdx.BOM) (map[string]componentInfo, []string) {
	lookup := make(map[string]componentInfo)
	declared := make([]string, 0)
	if bom.Components == nil {
		return lookup, declared
	}

	for _, component := range *bom.Components {
		ref := utils.FirstNonEmpty(component.BOMRef, component.PackageURL, component.Name)
		if ref == "" {
			b.logger.Warn("skipping component without any identifier")
			continue
		}
		if _, ok := lookup[ref]; ok {
			continue
		}
		id := utils.FirstNonEmpty(component.PackageURL, component.Name, ref)
		lookup[ref] = componentInfo{
			id:     id,
			name:   component.Name,
			bomRef: ref,
		}
		declared = append(declared, ref)
	}
	return lookup, declared
}

// dependencyLookup merges all dependency entries with the same ref.
func dependencyLookup(bom *cdx.BOM) map[string][]string {
	lookup := make(map[string][]string)
	if bom.Dependencies == nil {
		return lookup
	}
	for _, dep := range *bom.Dependencies {
		if dep.Dependencies == nil {
			continue
		}
		lookup[dep.Ref] = append(lookup[dep.Ref], *dep.Dependencies...)
	}
	return lookup
}
