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

// Package directdeps counts the direct dependencies python repositories
// declare in their pyproject.toml.
package directdeps

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/l3montree-dev/sbomgraph/utils"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const PyprojectFileName = "pyproject.toml"

// Requirement is a declared dependency. Version holds the raw constraint,
// for PEP 508 strings it stays part of Name.
type Requirement struct {
	Name    string
	Version string
}

type Project struct {
	Repository      string
	Dependencies    []Requirement
	DevDependencies []Requirement
}

type pyproject struct {
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		Dependencies   []string `toml:"dependencies"`
		RequiresPython string   `toml:"requires-python"`
	} `toml:"project"`
}

// Parse reads the dependencies of a pyproject.toml. Poetry dependencies and
// PEP 621 project dependencies are both supported, requires-python is
// recorded as a dependency named python.
func Parse(repository string, content []byte) (Project, error) {
	var doc pyproject
	if err := toml.Unmarshal(content, &doc); err != nil {
		return Project{}, errors.Wrapf(err, "could not parse %s of %s", PyprojectFileName, repository)
	}

	project := Project{
		Repository:      repository,
		Dependencies:    poetryRequirements(doc.Tool.Poetry.Dependencies),
		DevDependencies: poetryRequirements(doc.Tool.Poetry.DevDependencies),
	}
	for _, dep := range doc.Project.Dependencies {
		if dep = strings.TrimSpace(dep); dep != "" {
			project.Dependencies = append(project.Dependencies, Requirement{Name: dep})
		}
	}
	if doc.Project.RequiresPython != "" {
		project.Dependencies = append(project.Dependencies, Requirement{Name: "python", Version: doc.Project.RequiresPython})
	}
	return project, nil
}

func poetryRequirements(deps map[string]any) []Requirement {
	requirements := make([]Requirement, 0, len(deps))
	for _, name := range utils.SortedKeys(deps) {
		requirements = append(requirements, Requirement{Name: name, Version: poetryVersion(deps[name])})
	}
	return requirements
}

// poetryVersion supports the plain string and the inline table notation.
func poetryVersion(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}

var requirementName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// BaseName returns the lowercased package name of a requirement without extras or version specifiers.
func BaseName(requirement string) string {
	requirement = strings.TrimSpace(requirement)
	if name := requirementName.FindString(requirement); name != "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(requirement)
}

// LoadProjects parses the pyproject.toml at the top level of every repository
// directory below dir. Unreadable files are logged and skipped.
func LoadProjects(logger *slog.Logger, dir string) ([]Project, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "could not read repository directory")
	}

	projects := make([]Project, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), PyprojectFileName)
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("could not read pyproject", "path", path, "err", err)
			}
			continue
		}
		project, err := Parse(entry.Name(), content)
		if err != nil {
			logger.Warn("could not parse pyproject", "path", path, "err", err)
			continue
		}
		projects = append(projects, project)
	}
	return projects, nil
}
