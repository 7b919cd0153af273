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

// Package build provides the build command for yaje.
package build

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/yaje/builder"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/internal/console"
	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// Cmd is the build cobra command that produces the standalone executable.
var Cmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project into a standalone executable",
	Long: `Build bundles the project's JavaScript entry point, compiles every
native module, and links everything with the embedded bundle into a single
executable under .yaje/<target>/.`,
	Example: `  # Build for the host target
  yaje build

  # Cross-build for linux aarch64
  yaje build -t aarch64-unknown-linux-gnu`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("target", "t", "", "Target triple (default: host)")

	_ = viper.BindPFlag("target", Cmd.Flags().Lookup("target"))
}

func run(cmd *cobra.Command, args []string) error {
	tgt := target.Host()
	if spec := viper.GetString("target"); spec != "" {
		parsed, err := target.Parse(spec)
		if err != nil {
			return err
		}
		tgt = parsed
	}

	log := console.New(viper.GetBool("verbose"))
	result, err := builder.Build(cmd.Context(), builder.Options{
		Fsys:       fs.NewOSFileSystem(),
		Runner:     toolchain.NewExecRunner(),
		Log:        log,
		ProjectDir: viper.GetString("project"),
		Target:     tgt,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Executable)
	return nil
}
