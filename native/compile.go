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

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// Compiler drives clang and llvm-ar for one build. It owns the hash
// sidecars that make object compilation incremental.
type Compiler struct {
	fsys   fs.FileSystem
	runner toolchain.Runner
	log    Logger
}

// NewCompiler creates a Compiler. log may be nil.
func NewCompiler(fsys fs.FileSystem, runner toolchain.Runner, log Logger) *Compiler {
	return &Compiler{fsys: fsys, runner: runner, log: log}
}

// CompileModule compiles every source of module that is out of date,
// refreshes the hash sidecars, and archives the objects into the module's
// static library. The archive is recreated unconditionally; incrementality
// lives at the object layer. Returns the archive path.
func (c *Compiler) CompileModule(ctx context.Context, module *buildcfg.CFGResult, deps []*buildcfg.CFGResult, out OutputInformation, tgt target.Triple) (string, error) {
	args := Args(module, deps, BaseCFlags(tgt))

	objectDir := filepath.Join(out.ObjFolder, filepath.FromSlash(module.Name))
	cacheDir := filepath.Join(out.CacheFolder, filepath.FromSlash(module.Name))
	for _, dir := range []string{objectDir, cacheDir} {
		if err := c.fsys.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	var objects []string
	for i, source := range module.Sources {
		base := ObjectBaseName(module.Sources, i)
		object := filepath.Join(objectDir, base+".o")
		sidecar := filepath.Join(cacheDir, base+".hash")

		headerDeps := HeaderDependencies(ctx, c.runner, c.log, args, source)
		hash, err := Hash(c.fsys, args, source, headerDeps)
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", source, err)
		}

		if c.upToDate(object, sidecar, hash) {
			c.debugf("%s is up to date", object)
			objects = append(objects, object)
			continue
		}

		c.debugf("compiling %s", source)
		compileArgs := append(append([]string(nil), args...), source, "-o", object)
		if _, err := c.runner.Run(ctx, toolchain.Invocation{Tool: toolchain.Clang, Args: compileArgs}); err != nil {
			return "", fmt.Errorf("compiling %s: %w", source, err)
		}

		// Sidecar after object: a crash in between leaves the cache
		// conservatively stale, never falsely fresh.
		if err := c.fsys.WriteFile(sidecar, []byte(hash), 0644); err != nil {
			return "", fmt.Errorf("writing hash sidecar for %s: %w", source, err)
		}
		objects = append(objects, object)
	}

	return c.archive(ctx, out.ModFolder, objectDir, objects)
}

// upToDate reports whether an object and its sidecar both exist and the
// stored hash matches.
func (c *Compiler) upToDate(object, sidecar, hash string) bool {
	if !c.fsys.Exists(object) || !c.fsys.Exists(sidecar) {
		return false
	}
	stored, err := c.fsys.ReadFile(sidecar)
	return err == nil && string(stored) == hash
}

// ObjectBaseName returns the object base name for sources[i], suffixing
// repeated basenames with a running counter so objects from different
// directories cannot collide. The compilation-database command uses the
// same rule so its object paths match the build's.
func ObjectBaseName(sources []string, i int) string {
	base := strings.TrimSuffix(filepath.Base(sources[i]), filepath.Ext(sources[i]))
	count := 0
	for _, prior := range sources[:i] {
		priorBase := strings.TrimSuffix(filepath.Base(prior), filepath.Ext(prior))
		if priorBase == base {
			count++
		}
	}
	if count > 0 {
		return fmt.Sprintf("%s%d", base, count)
	}
	return base
}

func (c *Compiler) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debug(format, args...)
	}
}
