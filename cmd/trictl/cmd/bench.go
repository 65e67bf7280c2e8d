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
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lkaino/cleanflight/bench"
	"github.com/lkaino/cleanflight/servo"
)

var (
	benchDeviceFlag   string
	benchBaudFlag     int
	benchSaveFlag     bool
	benchFeedbackFlag string
)

func init() {
	RootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringVarP(&benchDeviceFlag, "device", "d", "/dev/ttyUSB0", "serial device of the servo rig")
	benchCmd.Flags().IntVarP(&benchBaudFlag, "baud", "b", bench.DefaultBaudRate, "baud rate of the servo rig")
	benchCmd.Flags().BoolVarP(&benchSaveFlag, "save", "s", false, "save the result into --config")
	benchCmd.Flags().StringVarP(&benchFeedbackFlag, "feedback", "f", "", "feedback source to calibrate, empty means use the config")
}

func benchRun(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ServoFeedback, err = feedbackSource(benchFeedbackFlag, cfg.ServoFeedback); err != nil {
		return err
	}
	if cfg.ServoFeedback == servo.FeedbackVirtual {
		return fmt.Errorf("bench calibration needs a feedback source")
	}
	store, err := configStore(benchSaveFlag)
	if err != nil {
		return err
	}
	rig, err := bench.Open(benchDeviceFlag, benchBaudFlag)
	if err != nil {
		return err
	}
	defer rig.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return rig.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		params := cfg.Servo
		return bench.Calibrate(ctx, rig, rig, cfg, &params, store)
	})
	err = eg.Wait()
	lines, bad := rig.Stats()
	log.Debugf("rig lines: %d, malformed: %d", lines, bad)
	if err != nil {
		fmt.Printf("%s bench calibration: %v\n", failString, err)
		return err
	}
	fmt.Printf("%s feedback %s min %d mid %d max %d, speed %d deg/s\n", okString, cfg.ServoFeedback, cfg.ServoMinADC, cfg.ServoMidADC, cfg.ServoMaxADC, cfg.TailServoSpeed)
	return nil
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Calibrate a servo with position feedback on a serial test rig",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := benchRun(ctx); err != nil {
			log.Fatal(err)
		}
	},
}
