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

package bench

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/tricopter"
)

// ServoDriver sets the servo position
type ServoDriver interface {
	SetServo(value int16) error
}

// ground is a disarmed vehicle with the tail tune switch on. The pitch
// stick is pulled down for one tick to start calibration.
type ground struct {
	ticks int
}

func (g *ground) Armed() bool          { return false }
func (g *ground) ThrottleHigh() bool   { return false }
func (g *ground) Throttle() float64    { return 0 }
func (g *ground) GyroYawRate() float64 { return 0 }
func (g *ground) TailTuneRequested() bool {
	return true
}
func (g *ground) RCCommand(axis tricopter.Axis) float64 {
	if axis == tricopter.AxisPitch && g.ticks == 1 {
		return -500
	}
	return 0
}

type idleMotors struct{}

func (idleMotors) Output(int) float64              { return 1000 }
func (idleMotors) OutputRange() (float64, float64) { return 1000, 2000 }

// Calibrate runs the servo feedback calibration on the rig in real time.
// Results are written to cfg and saved to store.
func Calibrate(ctx context.Context, adc tricopter.ADC, driver ServoDriver, cfg *tricopter.Config, params *servo.Params, store tricopter.Store) error {
	if cfg.ServoFeedback == servo.FeedbackVirtual {
		return fmt.Errorf("servo calibration needs a feedback source")
	}
	g := &ground{}
	var output int16
	m := tricopter.NewTailMixer(cfg, tricopter.Env{
		ADC:    adc,
		Flight: g,
		Motors: idleMotors{},
		Store:  store,
	})
	m.Init(params, &output)

	ticker := time.NewTicker(cfg.LoopTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		m.MixYaw(0, 500)
		g.ticks++
		if err := driver.SetServo(output); err != nil {
			return fmt.Errorf("setting servo: %w", err)
		}
		if g.ticks > 2 && m.ServoSetupState() != tricopter.ServoSetupCalib {
			break
		}
	}
	if !m.CalibDone() {
		return fmt.Errorf("servo calibration aborted")
	}
	log.Infof("rig calibrated: min %d mid %d max %d, speed %d deg/s", cfg.ServoMinADC, cfg.ServoMidADC, cfg.ServoMaxADC, cfg.TailServoSpeed)
	return nil
}
