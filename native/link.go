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

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// LinkInputs collects everything the final link consumes. Archives must be
// in discovery order: link order, not archive identity, keeps symbol
// resolution correct.
type LinkInputs struct {
	Archives     []string
	BundleObject string
	EntryObject  string
	Modules      []*buildcfg.CFGResult
}

// Link produces the final executable at targetFolder/a (a.exe on windows)
// and returns its path.
func (c *Compiler) Link(ctx context.Context, in LinkInputs, tgt target.Triple, out OutputInformation) (string, error) {
	executable := out.Executable(tgt)

	args := append([]string(nil), in.Archives...)
	args = append(args, in.BundleObject, in.EntryObject)
	args = append(args, BaseLFlags()...)
	args = append(args, "-target", tgt.String())

	seenDir := map[string]bool{}
	seenLib := map[string]bool{}
	for _, module := range in.Modules {
		for _, dir := range module.LibraryLookup {
			if !seenDir[dir] {
				seenDir[dir] = true
				args = append(args, "-L", dir)
			}
		}
	}
	for _, module := range in.Modules {
		for _, lib := range module.LinkLibraries {
			if !seenLib[lib] {
				seenLib[lib] = true
				args = append(args, "-l"+lib)
			}
		}
	}
	for _, module := range in.Modules {
		args = append(args, module.LFlags...)
	}
	args = append(args, "-o", executable)

	c.debugf("linking %s", executable)
	if _, err := c.runner.Run(ctx, toolchain.Invocation{Tool: toolchain.Clang, Args: args}); err != nil {
		return "", fmt.Errorf("linking: %w", err)
	}
	return executable, nil
}
