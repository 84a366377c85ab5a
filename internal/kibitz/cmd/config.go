// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/kibitz/pkg/common"
)

func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration used by kibitz",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`config prints the configuration kibitz plays with, after
			filling in the defaults for any missing fields.

			The configuration lives in config.yaml inside the kibitz
			directory of your config home, and is created with the
			default values on first use. Use --path to print its
			location instead.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetBool("path"); path {
				fmt.Println(common.ConfigFile)
				return nil
			}

			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := conf.Dump()
			if err != nil {
				return err
			}

			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().Bool("path", false, "Print the path of the configuration file")
	return cmd
}
