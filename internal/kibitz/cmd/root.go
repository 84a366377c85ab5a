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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/kibitz/pkg/common"
	"laptudirm.com/x/kibitz/pkg/config"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "kibitz",
		Short: "Play chess on the command line, against a friend or an engine",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If --trace flag is provided, set logging level to Trace.
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}

			// If --log is provided, write the logs to that file instead.
			if cmd.Flag("log").Changed {
				path, _ := cmd.Flags().GetString("log")
				if path == "" {
					path = common.LogFile
				}

				if err := common.TryMkdir(filepath.Dir(path)); err != nil {
					return err
				}

				file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, common.FilePermissions)
				if err != nil {
					return fmt.Errorf("log file: %w", err)
				}

				logrus.SetOutput(file)
			}

			return nil
		},
	}

	// global flags
	root.PersistentFlags().BoolP("help", "h", false, "Show Help Information")
	root.PersistentFlags().BoolP("version", "v", false, "Show Kibitz's Version")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().String("log", "", "Write logs to the given file")
	root.PersistentFlags().Lookup("log").NoOptDefVal = common.LogFile

	versionStr := "v0.1.0\n"
	root.SetVersionTemplate(versionStr)
	root.Version = versionStr

	// Register the various commands.
	root.AddCommand(Play())
	root.AddCommand(Engine())
	root.AddCommand(Config())

	return root
}

// loadConfig loads the user's configuration and applies the overrides
// given on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	conf, err := config.LoadDefault()
	if err != nil {
		return conf, err
	}

	flags := cmd.Flags()
	if flag := flags.Lookup("rules"); flag != nil && flag.Changed {
		conf.Rules = flag.Value.String()
	}

	if flag := flags.Lookup("mode"); flag != nil && flag.Changed {
		conf.Mode = flag.Value.String()
	}

	if flag := flags.Lookup("tc"); flag != nil && flag.Changed {
		conf.TimeControl, _ = flags.GetInt("tc")
	}

	if flag := flags.Lookup("engine"); flag != nil && flag.Changed {
		conf.Engine.Cmd = flag.Value.String()
		conf.Engine.Name = filepath.Base(conf.Engine.Cmd)
	}

	return conf, conf.Validate()
}
