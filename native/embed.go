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
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// BundleSymbolPrefix names the C symbols the embedded bundle exports.
const BundleSymbolPrefix = "JS_BUNDLE"

// EmbedBundle materializes the bundle bytes as a C object exposing
// <prefix>_LENGTH and <prefix>_DATA. A trailing NUL sentinel after the
// content lets the runtime treat the data as a C string; the length
// constant excludes it.
//
// The compiler reads the rendered source from standard input. A
// bundle.hash sidecar skips the whole step when the bundle bytes are
// unchanged.
func (c *Compiler) EmbedBundle(ctx context.Context, bundle []byte, symbolPrefix string, tgt target.Triple, extraFlags []string, out OutputInformation) (string, error) {
	object := filepath.Join(out.ModFolder, "bundle.o")
	sidecar := filepath.Join(out.CacheFolder, "bundle.hash")

	sum := sha256.Sum256(bundle)
	hash := hex.EncodeToString(sum[:])

	if c.upToDate(object, sidecar, hash) {
		c.debugf("embedded bundle is up to date")
		return object, nil
	}

	source := RenderEmbedSource(bundle, symbolPrefix)
	args := append(append([]string(nil), extraFlags...),
		"-x", "c", "-c", "-target", tgt.String(), "-", "-o", object)

	inv := toolchain.Invocation{
		Tool:  toolchain.Clang,
		Args:  args,
		Stdin: strings.NewReader(source),
	}
	if _, err := c.runner.Run(ctx, inv); err != nil {
		return "", fmt.Errorf("embedding bundle: %w", err)
	}

	if err := c.fsys.WriteFile(sidecar, []byte(hash), 0644); err != nil {
		return "", fmt.Errorf("writing bundle sidecar: %w", err)
	}
	return object, nil
}

// RenderEmbedSource renders the C translation unit that carries the bundle
// bytes. Deterministic for a given input.
func RenderEmbedSource(bundle []byte, symbolPrefix string) string {
	var b strings.Builder
	b.WriteString("#include <stddef.h>\n\n")
	fmt.Fprintf(&b, "size_t %s_LENGTH = %d;\n", symbolPrefix, len(bundle))
	fmt.Fprintf(&b, "unsigned char %s_DATA[] = {", symbolPrefix)

	// Sentinel byte appended after the content.
	data := append(append([]byte(nil), bundle...), 0x00)
	for i, by := range data {
		if i%16 == 0 {
			b.WriteString("\n\t")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "0x%02x,", by)
	}
	b.WriteString("\n};\n")
	return b.String()
}
