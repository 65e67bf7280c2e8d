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

package tricopter

import (
	"math"
	"time"

	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"

	"github.com/lkaino/cleanflight/servo"
)

const (
	// sticks must stay this close to center while sampling
	rollPitchDeadband = 30.0
	yawDeadband       = 60.0

	// the average tail angle must fall within this range to be trusted
	thrustTorqueMinAngle = 905.0
	thrustTorqueMaxAngle = 1200.0

	notifyInterval = 2 * time.Second
)

type thrustTorque struct {
	state ThrustTorqueState

	startBeepDelay time.Duration
	timestamp      time.Time // state entry, settle window start while active
	lastSample     time.Time
	lastAdjTime    time.Time // sampling started
	avgAngle       *welford.Stats
	samples        int
}

func (m *TailMixer) setThrustTorqueState(state ThrustTorqueState) {
	log.Infof("thrust/torque tune %s -> %s", m.tune.tt.state, state)
	m.tune.tt.state = state
}

func (m *TailMixer) failThrustTorque(now time.Time, reason string) {
	log.Warningf("thrust/torque tune failed: %s", reason)
	m.env.Beeper.Beep(BeepFail)
	m.tune.tt.timestamp = now
	m.setThrustTorqueState(ThrustTorqueFail)
}

func centered(v, deadband float64) bool {
	return math.Abs(v) <= deadband
}

// thrustTorqueStep runs the autotune measuring the tail angle where yaw
// torque cancels out in a steady hover
func (m *TailMixer) thrustTorqueStep(now time.Time) {
	tt := &m.tune.tt
	f := m.env.Flight
	c := &m.cfg.TailTune

	switch tt.state {
	case ThrustTorqueIdle:
		if f.Armed() && f.ThrottleHigh() {
			m.env.Beeper.Beep(BeepShort)
			tt.startBeepDelay = time.Second
			tt.timestamp = now
			tt.lastSample = now
			tt.lastAdjTime = now
			tt.avgAngle = welford.New()
			tt.samples = 0
			m.setThrustTorqueState(ThrustTorqueWait)
		}
	case ThrustTorqueWait:
		if !f.Armed() || !f.ThrottleHigh() {
			m.setThrustTorqueState(ThrustTorqueIdle)
			return
		}
		elapsed := now.Sub(tt.timestamp)
		if elapsed >= c.StartDelay {
			m.env.Beeper.Beep(BeepLong)
			tt.timestamp = now
			tt.lastSample = now
			tt.lastAdjTime = now
			m.setThrustTorqueState(ThrustTorqueActive)
		} else if elapsed >= tt.startBeepDelay {
			m.env.Beeper.Beep(BeepShort)
			tt.startBeepDelay += time.Second
		}
	case ThrustTorqueActive:
		if !f.Armed() {
			m.failThrustTorque(now, "disarmed while sampling")
			return
		}
		if now.Sub(tt.lastAdjTime) > c.MaxDuration {
			m.failThrustTorque(now, "no steady hover within "+c.MaxDuration.String())
			return
		}
		steady := f.ThrottleHigh() &&
			centered(f.RCCommand(AxisRoll), rollPitchDeadband) &&
			centered(f.RCCommand(AxisPitch), rollPitchDeadband) &&
			centered(f.RCCommand(AxisYaw), yawDeadband) &&
			centered(f.GyroYawRate(), c.GyroLimit)
		if !steady {
			tt.timestamp = now
			return
		}
		if now.Sub(tt.timestamp) < c.SettleTime || now.Sub(tt.lastSample) < c.SampleInterval {
			return
		}
		tt.lastSample = now
		tt.avgAngle.Add(m.servo.angle)
		tt.samples++
		if tt.samples < c.Samples {
			return
		}
		g := m.servo.geometry
		avg := tt.avgAngle.Mean()
		if avg < g.AngleAtMin() || avg > g.AngleAtMax() {
			m.failThrustTorque(now, "average tail angle out of range")
			return
		}
		log.Infof("thrust/torque tune sampled average angle %.1f, stddev %.1f", avg/10, tt.avgAngle.Stddev()/10)
		m.env.Beeper.Beep(BeepReady)
		tt.timestamp = now
		m.setThrustTorqueState(ThrustTorqueWaitForDisarm)
	case ThrustTorqueWaitForDisarm:
		if !f.Armed() {
			m.finishThrustTorque(now)
			return
		}
		if now.Sub(tt.timestamp) >= notifyInterval {
			m.env.Beeper.Beep(BeepReady)
			tt.timestamp = now
		}
	case ThrustTorqueDone:
		if now.Sub(tt.timestamp) >= notifyInterval {
			m.env.Beeper.Beep(BeepReady)
			tt.timestamp = now
		}
	case ThrustTorqueFail:
		if now.Sub(tt.timestamp) >= notifyInterval {
			m.env.Beeper.Beep(BeepFail)
			tt.timestamp = now
		}
	}
}

// ThrustFactorFromAngle returns the stored (x10) thrust factor for the tail
// angle in decidegrees where yaw torque is zero
func ThrustFactorFromAngle(angle float64) int16 {
	tf := 10 / math.Tan(servo.DeciToRad(angle-servo.AngleMid))
	return int16(servo.Constrain(math.Round(tf), TailThrustFactorMin, TailThrustFactorMax))
}

func (m *TailMixer) finishThrustTorque(now time.Time) {
	tt := &m.tune.tt
	avg := tt.avgAngle.Mean()
	if avg <= thrustTorqueMinAngle || avg >= thrustTorqueMaxAngle {
		m.failThrustTorque(now, "average tail angle does not give a usable thrust factor")
		return
	}
	prev := m.cfg.TailMotorThrustFactor
	m.cfg.TailMotorThrustFactor = ThrustFactorFromAngle(avg)
	m.applyConfig()
	log.Infof("thrust factor %d -> %d", prev, m.cfg.TailMotorThrustFactor)
	if err := m.env.Store.Save(m.cfg, m.servo.params); err != nil {
		log.Errorf("failed to save thrust factor: %v", err)
	}
	m.env.Beeper.Beep(BeepReady)
	tt.timestamp = now
	m.setThrustTorqueState(ThrustTorqueDone)
}
