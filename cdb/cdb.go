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

// Package cdb emits a clang compilation database for the native modules of
// a project, so editors and language servers see the same arguments the
// build uses.
package cdb

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"bennypowers.dev/yaje/discover"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/native"
	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// Entry is one compile_commands.json record.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Output    string   `json:"output"`
}

// Generate discovers the project and produces one entry per native
// translation unit. A tree with no native packages (no @yaje/core in
// reach) yields an empty database rather than an error: the tool is
// useful even before native modules exist.
func Generate(fsys fs.ReadFS, log discover.Logger, projectDir string, tgt target.Triple) ([]Entry, error) {
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}

	discoverer := discover.NewDiscoverer(fsys, log)
	_, collection, err := discoverer.Discover(projectDir, tgt)
	if err != nil {
		return nil, fmt.Errorf("discovering packages: %w", err)
	}

	out := native.NewOutputInformation(projectDir, tgt)
	entries := []Entry{}
	for _, pkg := range collection.NativePackages() {
		deps := collection.NativeDependencies(pkg)
		args := native.Args(pkg.Instructions, deps, native.BaseCFlags(tgt))
		objectDir := filepath.Join(out.ObjFolder, filepath.FromSlash(pkg.Manifest.Name))

		for i, source := range pkg.Instructions.Sources {
			object := filepath.Join(objectDir, native.ObjectBaseName(pkg.Instructions.Sources, i)+".o")
			arguments := append([]string{toolchain.Clang}, args...)
			arguments = append(arguments, source, "-o", object)
			entries = append(entries, Entry{
				Directory: projectDir,
				File:      source,
				Arguments: arguments,
				Output:    object,
			})
		}
	}
	return entries, nil
}

// Write serializes a database to path.
func Write(fsys fs.FileSystem, entries []Entry, path string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, append(data, '\n'), 0644)
}
