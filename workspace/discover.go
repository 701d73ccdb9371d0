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

package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// SBOMFile is a CycloneDX document of one tool for one repository. The
// repository is the name of the directory containing the file.
type SBOMFile struct {
	Path       string
	Repository string
	Stem       string
}

func NewSBOMFile(path string) SBOMFile {
	return SBOMFile{
		Path:       path,
		Repository: filepath.Base(filepath.Dir(path)),
		Stem:       Stem(path),
	}
}

func (s SBOMFile) Tool() string {
	return ToolName(s.Stem)
}

// FindSBOMs returns every .json file below dir sorted by path.
func FindSBOMs(dir string) ([]SBOMFile, error) {
	files := make([]SBOMFile, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		files = append(files, NewSBOMFile(path))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not walk %s", dir)
	}
	slices.SortFunc(files, func(a, b SBOMFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// GraphFile is a persisted graph. Stem is the stem of the sbom it was built from.
type GraphFile struct {
	Path       string
	Repository string
	Stem       string
	Tool       string
}

func NewGraphFile(path string) GraphFile {
	stem := strings.TrimSuffix(Stem(path), GraphSuffix)
	return GraphFile{
		Path:       path,
		Repository: filepath.Base(filepath.Dir(filepath.Dir(path))),
		Stem:       stem,
		Tool:       ToolName(stem),
	}
}

type RepositoryGraphs struct {
	Repository string
	Graphs     []GraphFile
}

// FindGraphs lists the graphs of every repository below the output directory.
// Repositories and their graphs are sorted by name.
func (l Layout) FindGraphs() ([]RepositoryGraphs, error) {
	entries, err := os.ReadDir(l.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "could not read output directory")
	}

	res := make([]RepositoryGraphs, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		paths, err := filepath.Glob(filepath.Join(l.OutputDir, entry.Name(), JSONDir, "*"+GraphSuffix+".json"))
		if err != nil {
			return nil, errors.Wrap(err, "could not list graphs")
		}
		if len(paths) == 0 {
			continue
		}
		slices.Sort(paths)
		graphs := make([]GraphFile, 0, len(paths))
		for _, p := range paths {
			graphs = append(graphs, NewGraphFile(p))
		}
		res = append(res, RepositoryGraphs{Repository: entry.Name(), Graphs: graphs})
	}
	return res, nil
}

// FindRecords lists every persisted analysis record sorted by path.
func (l Layout) FindRecords() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(l.OutputDir, "*", PropertiesDir, "*"+PropertiesSuffix+".json"))
	if err != nil {
		return nil, errors.Wrap(err, "could not list analysis records")
	}
	slices.Sort(paths)
	return paths, nil
}
