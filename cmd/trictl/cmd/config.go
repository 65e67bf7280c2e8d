/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/lkaino/cleanflight/tricopter"
)

func init() {
	RootCmd.AddCommand(configCmd)
}

// printConfig writes the effective config as yaml
func printConfig(w io.Writer, cfg *tricopter.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func configRun(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := printConfig(w, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "%s %v\n", failString, err)
		return err
	}
	fmt.Fprintf(w, "%s config is valid\n", okString)
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print and validate the effective tricopter config",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := configRun(os.Stdout); err != nil {
			log.Fatal(err)
		}
	},
}
