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
	"time"

	log "github.com/sirupsen/logrus"
)

// TailTuneMode is the procedure run while the tail tune switch is on
type TailTuneMode uint8

// Tail tune modes
const (
	TailTuneNone TailTuneMode = iota
	TailTuneThrustTorque
	TailTuneServoSetup
)

// TailTuneModeToString is a map from TailTuneMode to string
var TailTuneModeToString = map[TailTuneMode]string{
	TailTuneNone:         "NONE",
	TailTuneThrustTorque: "THRUST_TORQUE",
	TailTuneServoSetup:   "SERVO_SETUP",
}

func (m TailTuneMode) String() string {
	return TailTuneModeToString[m]
}

// ThrustTorqueState is the state of the in-flight thrust factor autotune
type ThrustTorqueState uint8

// Thrust/torque autotune states
const (
	ThrustTorqueIdle ThrustTorqueState = iota
	ThrustTorqueWait
	ThrustTorqueActive
	ThrustTorqueWaitForDisarm
	ThrustTorqueDone
	ThrustTorqueFail
)

// ThrustTorqueStateToString is a map from ThrustTorqueState to string
var ThrustTorqueStateToString = map[ThrustTorqueState]string{
	ThrustTorqueIdle:          "IDLE",
	ThrustTorqueWait:          "WAIT",
	ThrustTorqueActive:        "ACTIVE",
	ThrustTorqueWaitForDisarm: "WAIT_FOR_DISARM",
	ThrustTorqueDone:          "DONE",
	ThrustTorqueFail:          "FAIL",
}

func (s ThrustTorqueState) String() string {
	return ThrustTorqueStateToString[s]
}

// ServoSetupState is the state of the on-ground servo setup
type ServoSetupState uint8

// Servo setup states
const (
	ServoSetupIdle ServoSetupState = iota
	ServoSetupSetup
	ServoSetupCalib
)

// ServoSetupStateToString is a map from ServoSetupState to string
var ServoSetupStateToString = map[ServoSetupState]string{
	ServoSetupIdle:  "IDLE",
	ServoSetupSetup: "SETUP",
	ServoSetupCalib: "CALIB",
}

func (s ServoSetupState) String() string {
	return ServoSetupStateToString[s]
}

// CalibState is the state of the feedback calibration
type CalibState uint8

// Feedback calibration states
const (
	CalibIdle CalibState = iota
	CalibMinMidMax
	CalibSpeed
)

// CalibStateToString is a map from CalibState to string
var CalibStateToString = map[CalibState]string{
	CalibIdle:      "IDLE",
	CalibMinMidMax: "CALIB_MIN_MID_MAX",
	CalibSpeed:     "CALIB_SPEED",
}

func (s CalibState) String() string {
	return CalibStateToString[s]
}

// CalibSubState is the servo position being calibrated
type CalibSubState uint8

// Feedback calibration positions
const (
	CalibMin CalibSubState = iota
	CalibMid
	CalibMax
)

// CalibSubStateToString is a map from CalibSubState to string
var CalibSubStateToString = map[CalibSubState]string{
	CalibMin: "MIN",
	CalibMid: "MID",
	CalibMax: "MAX",
}

func (s CalibSubState) String() string {
	return CalibSubStateToString[s]
}

type tailTune struct {
	mode TailTuneMode
	tt   thrustTorque
	ss   servoSetup
}

// TailTuneMode returns the running tail tune procedure
func (m *TailMixer) TailTuneMode() TailTuneMode {
	return m.tune.mode
}

// ThrustTorqueState returns the state of the thrust factor autotune
func (m *TailMixer) ThrustTorqueState() ThrustTorqueState {
	return m.tune.tt.state
}

// ServoSetupState returns the state of the servo setup
func (m *TailMixer) ServoSetupState() ServoSetupState {
	return m.tune.ss.state
}

// CalibState returns the state of the feedback calibration
func (m *TailMixer) CalibState() CalibState {
	return m.tune.ss.cal.state
}

// CalibDone reports the last feedback calibration completed
func (m *TailMixer) CalibDone() bool {
	return m.tune.ss.cal.done
}

// ResetTailTune stops any running tail tune
func (m *TailMixer) ResetTailTune() {
	m.tune = tailTune{}
}

// tailTuneHandler advances the tail tune. It returns true when the tune
// owns the servo output for this tick.
func (m *TailMixer) tailTuneHandler(now time.Time) bool {
	f := m.env.Flight
	if !f.TailTuneRequested() {
		if m.tune.mode != TailTuneNone {
			log.Infof("tail tune %s switched off", m.tune.mode)
			m.ResetTailTune()
		}
		return false
	}

	if m.tune.mode == TailTuneNone {
		if f.Armed() {
			m.tune.mode = TailTuneThrustTorque
			m.tune.tt = thrustTorque{state: ThrustTorqueIdle}
		} else {
			m.tune.mode = TailTuneServoSetup
			m.tune.ss = servoSetup{state: ServoSetupSetup}
			m.selectLimit(LimitMiddle)
		}
		log.Infof("tail tune %s started", m.tune.mode)
	}

	switch m.tune.mode {
	case TailTuneThrustTorque:
		m.thrustTorqueStep(now)
	case TailTuneServoSetup:
		if f.Armed() {
			log.Warning("armed during servo setup, leaving servo setup")
			m.env.Beeper.Beep(BeepFail)
			m.ResetTailTune()
			return false
		}
		m.servoSetupStep(now)
		return true
	}
	return false
}
