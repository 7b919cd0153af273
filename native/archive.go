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
package native

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"bennypowers.dev/yaje/toolchain"
)

// ArchiveName derives the static-library file name for a module from its
// object folder path. The digest avoids collisions between modules (each
// has a unique object folder); it is stable across runs and is not a
// content hash.
func ArchiveName(objectDir string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(objectDir)))
	digest := base64.RawURLEncoding.EncodeToString(sum[:])[:12]
	return "lib_" + digest + ".a"
}

// archive recreates the module's static library from its objects. An empty
// object list still produces an (empty) archive with a stable name.
func (c *Compiler) archive(ctx context.Context, modFolder, objectDir string, objects []string) (string, error) {
	path := filepath.Join(modFolder, ArchiveName(objectDir))

	// Recreate from scratch so objects dropped from the module don't
	// linger inside an updated archive.
	if c.fsys.Exists(path) {
		if err := c.fsys.Remove(path); err != nil {
			return "", fmt.Errorf("removing stale archive %s: %w", path, err)
		}
	}

	args := append([]string{"rcs", path}, objects...)
	if _, err := c.runner.Run(ctx, toolchain.Invocation{Tool: toolchain.Ar, Args: args}); err != nil {
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}
	return path, nil
}
