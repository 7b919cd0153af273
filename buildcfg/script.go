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
package buildcfg

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dop251/goja"

	"bennypowers.dev/yaje/fs"
)

// Config is the configuration object handed to build scripts. Its methods
// surface in the script with lowercased names (addSource, defineMacro, …);
// errors returned here are thrown as script exceptions.
type Config struct {
	fsys fs.ReadFS
	seed Seed

	sources          []string
	sourceSeen       map[string]bool
	includeDirs      []string
	macros           []Macro
	macroSeen        map[string]bool
	libraryLookup    []string
	linkLibraries    []string
	loadingFunctions []string
	cflags           []string
	lflags           []string
}

func newConfig(fsys fs.ReadFS, seed Seed) *Config {
	return &Config{
		fsys:       fsys,
		seed:       seed,
		sourceSeen: make(map[string]bool),
		macroSeen:  make(map[string]bool),
	}
}

// AddSource collects the *.c files directly inside dir, or every **/*.c
// below it when recursive is true.
func (c *Config) AddSource(dir string, recursive ...bool) error {
	abs, err := c.resolveDir(dir)
	if err != nil {
		return err
	}

	pattern := "*.c"
	if len(recursive) > 0 && recursive[0] {
		pattern = "**/*.c"
	}

	return iofs.WalkDir(c.fsys, abs, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok && !c.sourceSeen[path] {
			c.sourceSeen[path] = true
			c.sources = append(c.sources, path)
		}
		return nil
	})
}

// AddIncludeDir records a header search directory.
func (c *Config) AddIncludeDir(dir string) error {
	abs, err := c.resolveDir(dir)
	if err != nil {
		return err
	}
	c.includeDirs = appendUnique(c.includeDirs, abs)
	return nil
}

// AddLibraryLookup records a -L style library search directory.
func (c *Config) AddLibraryLookup(dir string) error {
	abs, err := c.resolveDir(dir)
	if err != nil {
		return err
	}
	c.libraryLookup = appendUnique(c.libraryLookup, abs)
	return nil
}

// DefineMacro records a preprocessor define. Accepted values are strings,
// numbers, and the literal true (a name-only define).
func (c *Config) DefineMacro(name string, value goja.Value) error {
	if !ValidCIdentifier(name) {
		return fmt.Errorf("%w: macro name %q", ErrBadMacroValue, name)
	}

	macro := Macro{Name: name}
	switch v := value.Export().(type) {
	case string:
		macro.Kind = MacroString
		macro.Str = v
	case int64:
		macro.Kind = MacroNumber
		macro.Num = float64(v)
	case float64:
		macro.Kind = MacroNumber
		macro.Num = v
	case bool:
		if !v {
			return fmt.Errorf("%w: %s=false", ErrBadMacroValue, name)
		}
		macro.Kind = MacroFlag
	default:
		return fmt.Errorf("%w: %s", ErrBadMacroValue, name)
	}

	if c.macroSeen[name] {
		for i, m := range c.macros {
			if m.Name == name {
				c.macros[i] = macro
				break
			}
		}
		return nil
	}
	c.macroSeen[name] = true
	c.macros = append(c.macros, macro)
	return nil
}

// LinkLibrary records a plain library name linked with -l<name>.
func (c *Config) LinkLibrary(name string) {
	c.linkLibraries = appendUnique(c.linkLibraries, name)
}

// SetLoadingFunctions replaces the list of C symbols the generated entry
// point calls to register this module with the runtime.
func (c *Config) SetLoadingFunctions(names ...string) error {
	for _, name := range names {
		if !ValidCIdentifier(name) {
			return fmt.Errorf("%w: %q", ErrBadLoadingFunction, name)
		}
	}
	c.loadingFunctions = append([]string(nil), names...)
	return nil
}

// SetCFlags replaces the module-local extra compiler flags.
func (c *Config) SetCFlags(flags ...string) {
	c.cflags = append([]string(nil), flags...)
}

// SetLFlags replaces the module-local extra linker flags.
func (c *Config) SetLFlags(flags ...string) {
	c.lflags = append([]string(nil), flags...)
}

// Complete freezes the configuration into a CFGResult.
func (c *Config) Complete() *CFGResult {
	return &CFGResult{
		Name:             c.seed.ModuleName,
		Sources:          append([]string(nil), c.sources...),
		IncludeDirs:      append([]string(nil), c.includeDirs...),
		DefineMacros:     append([]Macro(nil), c.macros...),
		LibraryLookup:    append([]string(nil), c.libraryLookup...),
		LinkLibraries:    append([]string(nil), c.linkLibraries...),
		LoadingFunctions: append([]string(nil), c.loadingFunctions...),
		CFlags:           append([]string(nil), c.cflags...),
		LFlags:           append([]string(nil), c.lflags...),
	}
}

func (c *Config) resolveDir(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.seed.PackageDir, p)
	}
	info, err := c.fsys.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}
	return abs, nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// archPredicates, vendorPredicates, platformPredicates and abiPredicates
// surface in scripts as the read-only objects arch, vendor, platform, abi.
type archPredicates struct {
	IsX64     bool
	IsI686    bool
	IsAArch64 bool
	IsArmv7   bool
	arch      string
}

func (a *archPredicates) Is(s string) bool { return a.arch == s }

type vendorPredicates struct {
	vendor string
}

func (v *vendorPredicates) Is(s string) bool { return v.vendor == s }

type platformPredicates struct {
	IsWindows bool
	IsLinux   bool
	IsDarwin  bool
	platform  string
}

func (p *platformPredicates) Is(s string) bool { return p.platform == s }

type abiPredicates struct {
	IsMSVC bool
	IsMusl bool
	IsGNU  bool
	abi    string
}

func (a *abiPredicates) Is(s string) bool { return a.abi == s }

// FindScript returns the build-configuration script inside dir, searching
// ScriptNames in order, or "" when the package has no native half.
func FindScript(fsys fs.ReadFS, dir string) string {
	for _, name := range ScriptNames {
		candidate := filepath.Join(dir, name)
		if fsys.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

// export default has no meaning to the embedded evaluator; the loader shim
// rewrites the assignment before evaluation.
var exportDefaultRe = regexp.MustCompile(`(?m)^\s*export\s+default\s+`)

// Evaluate runs a build-configuration script and returns its CFGResult.
//
// The script sees a config() constructor, the target predicates, and a
// CommonJS-style module object; it must leave a configured object as its
// default export.
func Evaluate(fsys fs.ReadFS, scriptPath string, seed Seed) (*CFGResult, error) {
	if err := seed.validate(); err != nil {
		return nil, err
	}

	src, err := fsys.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("reading build script: %w", err)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	module := vm.NewObject()
	exports := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)

	_ = vm.Set("config", func() *Config { return newConfig(fsys, seed) })
	_ = vm.Set("arch", &archPredicates{
		IsX64:     seed.Target.Arch == "x86_64",
		IsI686:    seed.Target.Arch == "i686",
		IsAArch64: seed.Target.Arch == "aarch64",
		IsArmv7:   seed.Target.Arch == "armv7",
		arch:      seed.Target.Arch,
	})
	_ = vm.Set("vendor", &vendorPredicates{vendor: seed.Target.Vendor})
	_ = vm.Set("platform", &platformPredicates{
		IsWindows: seed.Target.Platform == "windows",
		IsLinux:   seed.Target.Platform == "linux",
		IsDarwin:  seed.Target.Platform == "darwin",
		platform:  seed.Target.Platform,
	})
	_ = vm.Set("abi", &abiPredicates{
		IsMSVC: seed.Target.ABI == "msvc",
		IsMusl: seed.Target.ABI == "musl",
		IsGNU:  seed.Target.ABI == "gnu",
		abi:    seed.Target.ABI,
	})

	transformed := exportDefaultRe.ReplaceAllString(string(src), "module.exports.default = ")
	if _, err := vm.RunScript(scriptPath, transformed); err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", scriptPath, err)
	}

	exportsObj, ok := module.Get("exports").(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultExport, scriptPath)
	}
	def := exportsObj.Get("default")
	if def == nil || goja.IsUndefined(def) || goja.IsNull(def) {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultExport, scriptPath)
	}

	cfg, ok := def.Export().(*Config)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigObject, scriptPath)
	}
	return cfg.Complete(), nil
}
