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
package bundler

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/yaje/discover"
)

// ForPackage selects the gateway backend for a discovered bundler package.
// The backend is keyed by the package's base name (@yaje/vite → vite);
// esbuild runs in-process, the rest run the package's own API through a
// node driver.
func ForPackage(pkg *discover.TrackedPackage, opts Options) (Gateway, error) {
	name := pkg.Manifest.Name
	kind := name
	if i := strings.LastIndex(kind, "/"); i >= 0 {
		kind = kind[i+1:]
	}

	switch kind {
	case "esbuild":
		return NewESBuild(opts), nil
	case "vite", "rollup", "webpack":
		main := pkg.Manifest.Main
		if main == "" {
			return nil, fmt.Errorf("%w: %s has no main module", ErrUnknownBundler, name)
		}
		return NewNodeDriver(kind, filepath.Join(pkg.PackageFolder, main), opts), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBundler, name)
}
