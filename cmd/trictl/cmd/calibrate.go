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
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/sim"
)

var (
	calibrateSaveFlag     bool
	calibrateFeedbackFlag string
)

func init() {
	RootCmd.AddCommand(calibrateCmd)
	calibrateCmd.Flags().BoolVarP(&calibrateSaveFlag, "save", "s", false, "save the result into --config")
	calibrateCmd.Flags().StringVarP(&calibrateFeedbackFlag, "feedback", "f", "", "feedback source to calibrate, empty means use the config")
	calibrateCmd.Flags().Float64Var(&simServoSpeedFlag, "sim-servo-speed", sim.DefaultConfig().ServoSpeed, "real speed of the simulated servo in deg/s")
}

// feedbackSource returns the source named by flag or the configured one
func feedbackSource(flag string, configured servo.FeedbackSource) (servo.FeedbackSource, error) {
	if flag == "" {
		return configured, nil
	}
	return servo.FeedbackSourceFromString(flag)
}

func calibrateRun(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ServoFeedback, err = feedbackSource(calibrateFeedbackFlag, cfg.ServoFeedback); err != nil {
		return err
	}
	store, err := configStore(calibrateSaveFlag)
	if err != nil {
		return err
	}
	s, err := sim.New(simConfig(), cfg, store, nil)
	if err != nil {
		return err
	}
	res, err := s.RunServoCalibration(ctx)
	if err != nil {
		fmt.Printf("%s servo calibration: %v\n", failString, err)
		return err
	}
	fmt.Printf("%s feedback %s min %d mid %d max %d, speed %d deg/s\n", okString, cfg.ServoFeedback, res.MinADC, res.MidADC, res.MaxADC, res.Speed)
	return nil
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Run the servo feedback calibration in simulation",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := calibrateRun(context.Background()); err != nil {
			log.Fatal(err)
		}
	},
}
