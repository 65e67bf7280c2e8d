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

	"github.com/lkaino/cleanflight/sim"
	"github.com/lkaino/cleanflight/telemetry"
	"github.com/lkaino/cleanflight/tricopter"
)

var (
	tuneSaveFlag bool
)

func init() {
	RootCmd.AddCommand(tuneCmd)
	tuneCmd.Flags().BoolVarP(&tuneSaveFlag, "save", "s", false, "save the result into --config")
	tuneCmd.Flags().Float64Var(&simThrustFactorFlag, "sim-thrust-factor", sim.DefaultConfig().ThrustFactor, "real thrust factor of the simulated tail")
	tuneCmd.Flags().Float64Var(&simServoSpeedFlag, "sim-servo-speed", sim.DefaultConfig().ServoSpeed, "real speed of the simulated servo in deg/s")
	tuneCmd.Flags().StringVar(&simMQTTFlag, "mqtt", "", "MQTT broker to publish the result to")
}

func tuneRun(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := configStore(tuneSaveFlag)
	if err != nil {
		return err
	}
	s, err := sim.New(simConfig(), cfg, store, nil)
	if err != nil {
		return err
	}
	prev := cfg.TailMotorThrustFactor
	tf, err := s.RunAutotune(ctx)
	if err != nil {
		fmt.Printf("%s thrust/torque tune: %v\n", failString, err)
		return err
	}
	fmt.Printf("%s thrust factor %s -> %s after %v\n", okString, thrustFactorString(prev), thrustFactorString(tf), s.Elapsed())

	if simMQTTFlag != "" {
		tcfg := telemetry.DefaultConfig()
		tcfg.Broker = simMQTTFlag
		client, err := telemetry.Connect(tcfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		if err := telemetry.NewReporter(client, tcfg).Report(s.Now(), s.Mixer().Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

func thrustFactorString(tf int16) string {
	return fmt.Sprintf("%.1f", float64(tf)/10)
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Run the thrust/torque autotune in simulation",
	Long: fmt.Sprintf("Hovers the simulated vehicle with the tail tune switch on and lands when the tune has sampled. Thrust factor is limited to [%d, %d] x10.",
		tricopter.TailThrustFactorMin, tricopter.TailThrustFactorMax),
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := tuneRun(context.Background()); err != nil {
			log.Fatal(err)
		}
	},
}
