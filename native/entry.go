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
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// GenerateEntrySource renders the entry-point translation unit: extern
// declarations for every loading function, yaje_core_load_modules calling
// them in discovery order, and main wiring the runtime lifecycle around
// the embedded bundle. Byte-identical for a given function list.
func GenerateEntrySource(loadingFunctions []string) string {
	var b strings.Builder
	b.WriteString("#include <yaje_core.h>\n\n")

	for _, fn := range loadingFunctions {
		fmt.Fprintf(&b, "extern void %s(JSRuntime *rt, JSContext *ctx);\n", fn)
	}
	if len(loadingFunctions) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("void yaje_core_load_modules(JSRuntime *rt, JSContext *ctx) {\n")
	for _, fn := range loadingFunctions {
		fmt.Fprintf(&b, "\t%s(rt, ctx);\n", fn)
	}
	if len(loadingFunctions) == 0 {
		b.WriteString("\t(void)rt;\n\t(void)ctx;\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("int main(int argc, char **argv) {\n")
	b.WriteString("\t(void)argc;\n")
	b.WriteString("\t(void)argv;\n")
	b.WriteString("\tJSRuntime *rt;\n")
	b.WriteString("\tJSContext *ctx;\n")
	b.WriteString("\tyaje_core_ctor(&rt, &ctx);\n")
	b.WriteString("\tyaje_core_load_modules(rt, ctx);\n")
	b.WriteString("\tint status = yaje_core_execute(rt, ctx);\n")
	b.WriteString("\tyaje_core_free(&rt, &ctx);\n")
	b.WriteString("\treturn status;\n")
	b.WriteString("}\n")
	return b.String()
}

// BuildEntry writes the generated entry point to genFolder/main.c and
// compiles it to modFolder/main.o, cached through cacheFolder/main.hash
// with the same discipline as module objects.
func (c *Compiler) BuildEntry(ctx context.Context, loadingFunctions []string, coreIncludeDirs []string, tgt target.Triple, out OutputInformation) (string, error) {
	source := filepath.Join(out.GenFolder, "main.c")
	object := filepath.Join(out.ModFolder, "main.o")
	sidecar := filepath.Join(out.CacheFolder, "main.hash")

	if err := c.fsys.WriteFile(source, []byte(GenerateEntrySource(loadingFunctions)), 0644); err != nil {
		return "", fmt.Errorf("writing entry point: %w", err)
	}

	var args []string
	for _, dir := range coreIncludeDirs {
		args = append(args, "-I", dir)
	}
	args = append(args, "-g", "-fwrapv", "-Wall", "-target", tgt.String(), "-c")

	hash, err := Hash(c.fsys, args, source, nil)
	if err != nil {
		return "", fmt.Errorf("hashing entry point: %w", err)
	}
	if c.upToDate(object, sidecar, hash) {
		c.debugf("entry point is up to date")
		return object, nil
	}

	c.debugf("compiling entry point")
	compileArgs := append(append([]string(nil), args...), source, "-o", object)
	if _, err := c.runner.Run(ctx, toolchain.Invocation{Tool: toolchain.Clang, Args: compileArgs}); err != nil {
		return "", fmt.Errorf("compiling entry point: %w", err)
	}
	if err := c.fsys.WriteFile(sidecar, []byte(hash), 0644); err != nil {
		return "", fmt.Errorf("writing entry sidecar: %w", err)
	}
	return object, nil
}
