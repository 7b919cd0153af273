/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package packagejson provides parsing for the package.json manifests yaje
// builds from.
package packagejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"bennypowers.dev/yaje/fs"
)

// ErrMissingName is returned when a manifest has no "name" field; discovery
// keys every package by name, so a nameless manifest cannot participate.
var ErrMissingName = errors.New("package.json has no name")

// PackageJSON represents the subset of package.json the build driver reads.
type PackageJSON struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main,omitempty"`
	Bundler      bool              `json:"bundler,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`

	// dependencyOrder keeps the manifest's declaration order, which
	// encoding/json maps discard. Discovery recurses in this order.
	dependencyOrder []string
}

// DependencyNames returns the declared dependency names in declaration order.
func (pkg *PackageJSON) DependencyNames() []string {
	return pkg.dependencyOrder
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	if pkg.Name == "" {
		return nil, ErrMissingName
	}
	pkg.dependencyOrder = dependencyOrder(data)
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fs fs.ReadFS, path string) (*PackageJSON, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// dependencyOrder re-scans the raw dependencies object with a token decoder
// to recover declaration order.
func dependencyOrder(data []byte) []string {
	var raw struct {
		Dependencies json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || len(raw.Dependencies) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Dependencies))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var names []string
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return names
		}
		name, ok := key.(string)
		if !ok {
			return names
		}
		names = append(names, name)
		var discard any
		if err := dec.Decode(&discard); err != nil {
			return names
		}
	}
	return names
}
