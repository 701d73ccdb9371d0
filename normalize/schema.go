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
	"bytes"
	"net/http"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CycloneDXSchemaURL is the CycloneDX 1.6 JSON schema
const CycloneDXSchemaURL = "https://raw.githubusercontent.com/CycloneDX/specification/master/schema/bom-1.6.schema.json"

type httpURLLoader struct{}

func (httpURLLoader) Load(url string) (any, error) {
	resp, err := http.Get(url) //nolint:gosec,noctx
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("could not load %s: %s", url, resp.Status)
	}
	return jsonschema.UnmarshalJSON(resp.Body)
}

// SchemaValidator checks encoded boms against a JSON schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the schema at location, which is a file path or a http(s) url.
// Referenced schemas are resolved the same way.
func NewSchemaValidator(location string) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.UseLoader(jsonschema.SchemeURLLoader{
		"file":  jsonschema.FileLoader{},
		"http":  httpURLLoader{},
		"https": httpURLLoader{},
	})
	schema, err := compiler.Compile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not compile schema %s", location)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate encodes the bom as json and validates the result.
func (v *SchemaValidator) Validate(bom *cdx.BOM) error {
	var buf bytes.Buffer
	if err := cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON).Encode(bom); err != nil {
		return errors.Wrap(err, "could not encode bom")
	}
	doc, err := jsonschema.UnmarshalJSON(&buf)
	if err != nil {
		return errors.Wrap(err, "could not parse encoded bom")
	}
	return errors.Wrap(v.schema.Validate(doc), "bom does not match the schema")
}
