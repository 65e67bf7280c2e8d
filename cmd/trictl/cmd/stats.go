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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lkaino/cleanflight/stats"
)

var statsAddressFlag string

func init() {
	RootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsAddressFlag, "address", "a", "http://localhost:4269", "address of a running simulation's monitoring port")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print counters of a running simulation",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		counters, err := stats.FetchCounters(statsAddressFlag)
		if err != nil {
			log.Fatal(err)
		}
		if err := printCounters(os.Stdout, counters); err != nil {
			log.Fatal(err)
		}
	},
}
