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

package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/tricopter"
)

// ErrTuneFailed is returned when a tail tune procedure ends in failure
var ErrTuneFailed = errors.New("tail tune failed")

// ctxCheckEvery is how many steps run between context checks
const ctxCheckEvery = 1000

// stepUntil steps until done returns true, ctx is done or limit of simulated time passes
func (s *Sim) stepUntil(ctx context.Context, limit time.Duration, done func() bool) error {
	start := s.Elapsed()
	for i := 0; !done(); i++ {
		if s.Elapsed()-start > limit {
			return fmt.Errorf("no result after %v of simulated time", limit)
		}
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s.Step()
	}
	return nil
}

// RunAutotune flies the thrust/torque autotune: takes off, hovers until the
// tune has sampled, lands and disarms. It returns the new thrust factor (x10).
func (s *Sim) RunAutotune(ctx context.Context) (int16, error) {
	m := s.mixer
	tt := &s.mixCfg.TailTune
	limit := tt.StartDelay + tt.MaxDuration + 10*time.Second

	s.SetArmed(true)
	s.SetThrottle(s.cfg.HoverThrottle)
	// let the frame settle before the switch goes on
	s.Run(time.Second)
	s.SetTailTune(true)
	err := s.stepUntil(ctx, limit, func() bool {
		st := m.ThrustTorqueState()
		return st == tricopter.ThrustTorqueWaitForDisarm || st == tricopter.ThrustTorqueFail
	})
	if err != nil {
		return 0, err
	}
	log.Infof("autotune sampled after %v", s.Elapsed())

	s.SetThrottle(0)
	s.SetArmed(false)
	s.Step()
	state := m.ThrustTorqueState()
	s.SetTailTune(false)
	s.Step()
	if state != tricopter.ThrustTorqueDone {
		return 0, fmt.Errorf("%w: thrust/torque ended in %s", ErrTuneFailed, state)
	}
	return s.mixCfg.TailMotorThrustFactor, nil
}

// CalibrationResult is what servo calibration measured
type CalibrationResult struct {
	MinADC uint16
	MidADC uint16
	MaxADC uint16
	Speed  int16
}

// RunServoCalibration runs the feedback calibration on the ground
func (s *Sim) RunServoCalibration(ctx context.Context) (*CalibrationResult, error) {
	m := s.mixer
	if s.mixCfg.ServoFeedback == servo.FeedbackVirtual {
		return nil, fmt.Errorf("servo calibration needs a feedback source")
	}
	c := &s.mixCfg.ServoCalib
	limit := 3*c.Timeout + time.Duration(c.SpeedSamples+1)*2*c.Timeout

	s.SetArmed(false)
	s.SetTailTune(true)
	s.Step()
	s.SetStick(tricopter.AxisPitch, -500)
	s.Step()
	s.SetStick(tricopter.AxisPitch, 0)
	err := s.stepUntil(ctx, limit, func() bool {
		return m.ServoSetupState() != tricopter.ServoSetupCalib
	})
	// switching off resets the tune, read the result first
	done := m.CalibDone()
	s.SetTailTune(false)
	s.Step()
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, fmt.Errorf("%w: servo calibration aborted", ErrTuneFailed)
	}
	return &CalibrationResult{
		MinADC: s.mixCfg.ServoMinADC,
		MidADC: s.mixCfg.ServoMidADC,
		MaxADC: s.mixCfg.ServoMaxADC,
		Speed:  s.mixCfg.TailServoSpeed,
	}, nil
}

// YawStep commands a yaw rate with the stick and returns the yaw rate
// after d. The vehicle is armed and hovering.
func (s *Sim) YawStep(stick float64, d time.Duration) float64 {
	s.SetArmed(true)
	s.SetThrottle(s.cfg.HoverThrottle)
	s.SetStick(tricopter.AxisYaw, stick)
	s.Run(d)
	return s.yawRate
}
