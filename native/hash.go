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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"bennypowers.dev/yaje/fs"
)

// Hash computes the incremental-cache hash for one translation unit: the
// lowercase hex SHA-256 of the argument vector, the source bytes, and the
// bytes of each dependency that currently exists, streamed in order.
// Missing dependencies are skipped rather than failing, matching the
// soft-failure contract of the header scan.
func Hash(fsys fs.ReadFS, args []string, source string, deps []string) (string, error) {
	h := sha256.New()
	if _, err := io.WriteString(h, strings.Join(args, " ")); err != nil {
		return "", err
	}

	if err := streamFile(fsys, h, source); err != nil {
		return "", err
	}

	for _, dep := range deps {
		if !fsys.Exists(dep) {
			continue
		}
		if err := streamFile(fsys, h, dep); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// streamFile copies one file into the digest, scoping the descriptor to
// this call on both success and error paths.
func streamFile(fsys fs.ReadFS, w io.Writer, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
