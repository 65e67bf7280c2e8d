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
	"io"
	"math"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lkaino/cleanflight/sim"
	"github.com/lkaino/cleanflight/stats"
	"github.com/lkaino/cleanflight/telemetry"
	"github.com/lkaino/cleanflight/tricopter"
)

var (
	simDurationFlag       time.Duration
	simRealtimeFlag       bool
	simMonitoringPortFlag int
	simPromPortFlag       int
	simMQTTFlag           string
	simDumpFlag           bool
	simThrustFactorFlag   float64
	simServoSpeedFlag     float64
	simYawStepFlag        float64
)

// simulation state is published this often in simulated time
const simReportEvery = 10 * time.Millisecond

func init() {
	RootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().DurationVarP(&simDurationFlag, "duration", "d", 10*time.Second, "simulated time")
	simulateCmd.Flags().BoolVarP(&simRealtimeFlag, "realtime", "r", false, "run no faster than real time")
	simulateCmd.Flags().IntVarP(&simMonitoringPortFlag, "monitoringport", "m", 0, "port to serve json stats on, 0 disables")
	simulateCmd.Flags().IntVarP(&simPromPortFlag, "prometheus-port", "p", 0, "port to serve prometheus metrics on, 0 disables")
	simulateCmd.Flags().StringVar(&simMQTTFlag, "mqtt", "", "MQTT broker to publish snapshots to, e.g. tcp://localhost:1883")
	simulateCmd.Flags().BoolVar(&simDumpFlag, "dump", false, "dump final mixer state")
	simulateCmd.Flags().Float64Var(&simThrustFactorFlag, "sim-thrust-factor", sim.DefaultConfig().ThrustFactor, "real thrust factor of the simulated tail")
	simulateCmd.Flags().Float64Var(&simServoSpeedFlag, "sim-servo-speed", sim.DefaultConfig().ServoSpeed, "real speed of the simulated servo in deg/s")
	simulateCmd.Flags().Float64Var(&simYawStepFlag, "yaw-step", 150, "yaw stick deflection flipped every 2 seconds")
}

func simConfig() sim.Config {
	c := sim.DefaultConfig()
	c.ThrustFactor = simThrustFactorFlag
	c.ServoSpeed = simServoSpeedFlag
	return c
}

type simSummary struct {
	maxRateError float64
	saturated    int
}

// simLoop flies a yaw stick square wave until the duration passes or ctx is done
func simLoop(ctx context.Context, s *sim.Sim, st *stats.JSONStats, reporter *telemetry.Reporter) (*simSummary, error) {
	sum := &simSummary{}
	steps := max(1, int(simReportEvery/s.LoopTime()))
	s.SetArmed(true)
	start := time.Now()
	for s.Elapsed() < simDurationFlag {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		stick := simYawStepFlag
		if int(s.Elapsed()/(2*time.Second))%2 == 1 {
			stick = -simYawStepFlag
		}
		s.SetStick(tricopter.AxisYaw, stick)
		for i := 0; i < steps; i++ {
			s.Step()
			rateErr := s.RateError()
			sum.maxRateError = math.Max(sum.maxRateError, math.Abs(rateErr))
			if s.Mixer().IsServoSaturated(rateErr) {
				sum.saturated++
			}
		}
		snap := s.Mixer().Snapshot()
		st.SetSnapshot(snap)
		if reporter != nil {
			if err := reporter.Report(s.Now(), snap); err != nil {
				log.Warningf("failed to publish snapshot: %v", err)
			}
		}
		if simRealtimeFlag {
			if ahead := s.Elapsed() - time.Since(start); ahead > 0 {
				time.Sleep(ahead)
			}
		}
	}
	return sum, nil
}

func printCounters(w io.Writer, counters stats.Counters) error {
	table := tablewriter.NewWriter(w)
	table.Header("counter", "value")
	for _, k := range counters.Keys() {
		if err := table.Append([]string{k, fmt.Sprintf("%d", counters[k])}); err != nil {
			return err
		}
	}
	return table.Render()
}

func simulateRun(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := stats.NewJSONStats()
	s, err := sim.New(simConfig(), cfg, nil, st)
	if err != nil {
		return err
	}

	var reporter *telemetry.Reporter
	if simMQTTFlag != "" {
		tcfg := telemetry.DefaultConfig()
		tcfg.Broker = simMQTTFlag
		client, err := telemetry.Connect(tcfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		reporter = telemetry.NewReporter(client, tcfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	if simMonitoringPortFlag > 0 {
		eg.Go(func() error { return st.Start(ctx, simMonitoringPortFlag) })
	}
	if simPromPortFlag > 0 {
		exporter := stats.NewPrometheusExporter(&st.Stats, simPromPortFlag, time.Second)
		eg.Go(func() error { return exporter.Start(ctx) })
	}
	var sum *simSummary
	eg.Go(func() error {
		// servers stop with the simulation
		defer cancel()
		var err error
		sum, err = simLoop(ctx, s, st, reporter)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	fmt.Printf("simulated %v, max rate error %.1f deg/s, saturated for %d loops\n", s.Elapsed(), sum.maxRateError, sum.saturated)
	if err := printCounters(os.Stdout, st.Get()); err != nil {
		return err
	}
	if simDumpFlag {
		spew.Dump(s.Mixer().Snapshot())
	}
	return nil
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Fly the tail mixer in a closed loop yaw simulation",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := simulateRun(context.Background()); err != nil {
			log.Fatal(err)
		}
	},
}
