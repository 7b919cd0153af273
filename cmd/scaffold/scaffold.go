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

// Package scaffold provides the init command for yaje.
package scaffold

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/scaffold"
)

// Cmd is the init cobra command that scaffolds a new project.
var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new yaje project",
	RunE:  run,
}

func init() {
	Cmd.Flags().String("name", "", "Package name (default: directory name)")
	Cmd.Flags().Bool("native", false, "Also scaffold a native C module")

	_ = viper.BindPFlag("init.name", Cmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("init.native", Cmd.Flags().Lookup("native"))
}

func run(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(viper.GetString("project"))
	if err != nil {
		return err
	}

	err = scaffold.Project(fs.NewOSFileSystem(), dir, scaffold.Options{
		Name:   viper.GetString("init.name"),
		Native: viper.GetBool("init.native"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("scaffolded project in %s\n", dir)
	return nil
}
