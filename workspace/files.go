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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/l3montree-dev/sbomgraph/analysis"
	"github.com/pkg/errors"
)

// Create creates or truncates the file at path including its parent directories.
func Create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not create file")
	}
	return f, nil
}

func WriteFile(path string, data []byte) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}

// WriteJSON stores v indented by two spaces.
func WriteJSON(path string, v any) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "could not encode %s", path)
	}
	return nil
}

func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "could not read file")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "could not decode %s", path)
	}
	return nil
}

// LoadRecord reads a persisted analysis record.
func LoadRecord(path string) (analysis.Record, error) {
	var record analysis.Record
	err := ReadJSON(path, &record)
	return record, err
}
