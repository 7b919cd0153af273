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

// Package native compiles, archives, embeds and links the native half of a
// yaje project into a standalone executable.
package native

import (
	"path/filepath"

	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/target"
)

// Logger receives diagnostics during native compilation.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// OutputInformation is a read-only key to the derived directories under
// <project>/.yaje/<tripleString>/.
type OutputInformation struct {
	// TargetFolder is <project>/.yaje/<tripleString>.
	TargetFolder string
	// ObjFolder holds per-module object files.
	ObjFolder string
	// ModFolder holds static archives, the entry object and the bundle
	// object.
	ModFolder string
	// GenFolder holds generated C sources and the bundler output.
	GenFolder string
	// CacheFolder holds hash sidecars.
	CacheFolder string
}

// NewOutputInformation derives the output layout for a project and target.
func NewOutputInformation(projectDir string, tgt target.Triple) OutputInformation {
	targetFolder := filepath.Join(projectDir, ".yaje", tgt.String())
	return OutputInformation{
		TargetFolder: targetFolder,
		ObjFolder:    filepath.Join(targetFolder, "obj"),
		ModFolder:    filepath.Join(targetFolder, "modules"),
		GenFolder:    filepath.Join(targetFolder, "gen"),
		CacheFolder:  filepath.Join(targetFolder, "cache"),
	}
}

// EnsureDirs creates all four derived directories. Creation is idempotent.
func (o OutputInformation) EnsureDirs(fsys fs.FileSystem) error {
	for _, dir := range []string{o.ObjFolder, o.ModFolder, o.GenFolder, o.CacheFolder} {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Executable returns the path of the linked executable for the target.
func (o OutputInformation) Executable(tgt target.Triple) string {
	return filepath.Join(o.TargetFolder, "a"+tgt.ExecutableSuffix())
}
