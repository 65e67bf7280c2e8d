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
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lkaino/cleanflight/tricopter"
)

// RootCmd is a main entry point. It's exported so trictl could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "trictl",
	Short: "Tricopter tail tuning and inspection tool",
}

// flags
var rootVerboseFlag bool
var rootConfigFlag string

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVarP(&rootConfigFlag, "config", "c", "", "path to tricopter config, defaults are used when empty")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// loadConfig reads the config given with --config or returns defaults
func loadConfig() (*tricopter.Config, error) {
	if rootConfigFlag == "" {
		return tricopter.DefaultConfig(), nil
	}
	return tricopter.ReadConfig(rootConfigFlag)
}

// configStore saves calibration results into the --config file when save is set
func configStore(save bool) (tricopter.Store, error) {
	if !save {
		return nil, nil
	}
	if rootConfigFlag == "" {
		return nil, fmt.Errorf("--save needs --config")
	}
	return &tricopter.FileStore{Path: rootConfigFlag}, nil
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
