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
	// stick deflection selecting a limit or starting calibration
	stickSelect = 100.0
	// yaw stick deadband while adjusting a limit
	setupYawDeadband = 100.0
	// min and mid feedback closer than this means feedback is not connected
	minFeedbackSpan = 100.0
	// speed is timed between these shares of the travel
	speedTimingLow  = 0.1
	speedTimingHigh = 0.9
)

// LimitField selects a servo endpoint
type LimitField uint8

// Servo endpoints
const (
	LimitMin LimitField = iota
	LimitMiddle
	LimitMax
)

// LimitFieldToString is a map from LimitField to string
var LimitFieldToString = map[LimitField]string{
	LimitMin:    "min",
	LimitMiddle: "middle",
	LimitMax:    "max",
}

func (f LimitField) String() string {
	return LimitFieldToString[f]
}

// Get returns the endpoint value
func (f LimitField) Get(p *servo.Params) int16 {
	switch f {
	case LimitMin:
		return p.Min
	case LimitMax:
		return p.Max
	default:
		return p.Middle
	}
}

// Set updates the endpoint value
func (f LimitField) Set(p *servo.Params, v int16) {
	switch f {
	case LimitMin:
		p.Min = v
	case LimitMax:
		p.Max = v
	default:
		p.Middle = v
	}
}

// ADCField selects a calibrated feedback value
type ADCField uint8

// Feedback values
const (
	ADCMin ADCField = iota
	ADCMid
	ADCMax
)

// Get returns the feedback value
func (f ADCField) Get(c *Config) uint16 {
	switch f {
	case ADCMin:
		return c.ServoMinADC
	case ADCMax:
		return c.ServoMaxADC
	default:
		return c.ServoMidADC
	}
}

// Set updates the feedback value
func (f ADCField) Set(c *Config, v uint16) {
	switch f {
	case ADCMin:
		c.ServoMinADC = v
	case ADCMax:
		c.ServoMaxADC = v
	default:
		c.ServoMidADC = v
	}
}

type servoCalib struct {
	done               bool
	waitingServoToStop bool
	state              CalibState
	subState           CalibSubState

	timestamp   time.Time // step start, used for timeout
	stableSince time.Time
	stableADC   float64
	avgStart    time.Time
	avg         *welford.Stats
	pending     [3]uint16 // min, mid, max feedback until all are measured

	timing      bool
	timingStart time.Time
	speed       *welford.Stats
	sweeps      int
}

type servoSetup struct {
	state     ServoSetupState
	servoVal  float64
	limit     LimitField
	selection stickSelection
	cal       servoCalib
}

func (m *TailMixer) selectLimit(limit LimitField) {
	ss := &m.tune.ss
	ss.state = ServoSetupSetup
	ss.limit = limit
	ss.servoVal = float64(limit.Get(m.servo.params))
}

type stickSelection uint8

const (
	selectNone stickSelection = iota
	selectMin
	selectMiddle
	selectMax
	selectCalib
)

func readStickSelection(roll, pitch float64) stickSelection {
	switch {
	case roll < -stickSelect && centered(pitch, rollPitchDeadband):
		return selectMin
	case pitch > stickSelect && centered(roll, rollPitchDeadband):
		return selectMiddle
	case roll > stickSelect && centered(pitch, rollPitchDeadband):
		return selectMax
	case pitch < -stickSelect && centered(roll, rollPitchDeadband):
		return selectCalib
	}
	return selectNone
}

// servoSetupStep lets the operator adjust servo endpoints with sticks and
// runs the feedback calibration. Roll left, pitch up and roll right select
// min, middle and max, yaw moves the selected endpoint and pitch down
// starts calibration. A stick has to return to center before it selects again.
func (m *TailMixer) servoSetupStep(now time.Time) {
	ss := &m.tune.ss
	f := m.env.Flight

	sel := readStickSelection(f.RCCommand(AxisRoll), f.RCCommand(AxisPitch))
	if sel != ss.selection {
		ss.selection = sel
		switch sel {
		case selectMin:
			m.stickSelectLimit(LimitMin, BeepConfirm1)
		case selectMiddle:
			m.stickSelectLimit(LimitMiddle, BeepConfirm2)
		case selectMax:
			m.stickSelectLimit(LimitMax, BeepConfirm3)
		case selectCalib:
			log.Info("servo feedback calibration started")
			ss.state = ServoSetupCalib
			ss.cal = servoCalib{}
		}
	}

	switch ss.state {
	case ServoSetupSetup:
		if yaw := f.RCCommand(AxisYaw); !centered(yaw, setupYawDeadband) {
			ss.servoVal = servo.Constrain(ss.servoVal-yaw*m.dT.Seconds(), servo.ValueMin, servo.ValueMax)
			ss.limit.Set(m.servo.params, int16(math.Round(ss.servoVal)))
		}
	case ServoSetupCalib:
		m.servoCalibStep(now)
	}
	*m.servo.output = int16(math.Round(servo.Constrain(ss.servoVal, servo.ValueMin, servo.ValueMax)))
}

func (m *TailMixer) stickSelectLimit(limit LimitField, beep BeepPattern) {
	m.selectLimit(limit)
	m.env.Beeper.Beep(beep)
	log.Infof("servo setup adjusting %s", limit)
}

func (m *TailMixer) calibEnter(now time.Time, state CalibState, sub CalibSubState) {
	ss := &m.tune.ss
	cal := &ss.cal
	p := m.servo.params

	cal.state = state
	cal.subState = sub
	cal.done = false
	cal.timestamp = now
	cal.stableSince = now
	cal.stableADC = m.servo.adcFiltered
	cal.waitingServoToStop = true
	cal.avg = welford.New()
	cal.timing = false

	switch {
	case state == CalibSpeed && sub == CalibMin:
		ss.servoVal = float64(p.Min)
	case state == CalibSpeed:
		ss.servoVal = float64(p.Max)
	default:
		ss.servoVal = float64(LimitField(sub).Get(p))
	}
}

func (m *TailMixer) abortCalib(reason string) {
	ss := &m.tune.ss
	log.Warningf("servo feedback calibration failed: %s", reason)
	m.env.Beeper.Beep(BeepFail)
	ss.state = ServoSetupIdle
	ss.servoVal = float64(m.servo.params.Middle)
	ss.cal.state = CalibIdle
	ss.cal.done = false
}

// servoStopped reports the filtered feedback has stayed within tolerance long enough
func (m *TailMixer) servoStopped(now time.Time) bool {
	cal := &m.tune.ss.cal
	if math.Abs(m.servo.adcFiltered-cal.stableADC) > m.cfg.ServoCalib.StopTolerance {
		cal.stableADC = m.servo.adcFiltered
		cal.stableSince = now
		return false
	}
	return now.Sub(cal.stableSince) >= m.cfg.ServoCalib.StopTime
}

func (m *TailMixer) servoCalibStep(now time.Time) {
	cal := &m.tune.ss.cal
	c := &m.cfg.ServoCalib

	if cal.state == CalibIdle {
		if m.cfg.ServoFeedback == servo.FeedbackVirtual {
			m.abortCalib("no feedback source configured")
			return
		}
		m.calibEnter(now, CalibMinMidMax, CalibMin)
		return
	}
	if now.Sub(cal.timestamp) > c.Timeout {
		m.abortCalib("timed out in " + cal.state.String() + " " + cal.subState.String())
		return
	}

	switch cal.state {
	case CalibMinMidMax:
		m.calibPosition(now)
	case CalibSpeed:
		m.calibSpeed(now)
	}
}

// calibPosition measures feedback at one endpoint
func (m *TailMixer) calibPosition(now time.Time) {
	cal := &m.tune.ss.cal
	if cal.waitingServoToStop {
		if m.servoStopped(now) {
			cal.waitingServoToStop = false
			cal.avgStart = now
		}
		return
	}
	cal.avg.Add(float64(m.servo.adcRaw))
	if now.Sub(cal.avgStart) < m.cfg.ServoCalib.AverageWindow {
		return
	}

	cal.pending[cal.subState] = uint16(math.Round(cal.avg.Mean()))
	cal.done = true
	log.Infof("servo feedback at %s is %d", cal.subState, cal.pending[cal.subState])

	switch cal.subState {
	case CalibMin:
		m.calibEnter(now, CalibMinMidMax, CalibMid)
	case CalibMid:
		if math.Abs(float64(cal.pending[CalibMin])-float64(cal.pending[CalibMid])) < minFeedbackSpan {
			m.abortCalib("feedback does not follow the servo")
			return
		}
		m.calibEnter(now, CalibMinMidMax, CalibMax)
	case CalibMax:
		for i, v := range cal.pending {
			ADCField(i).Set(m.cfg, v)
		}
		cal.speed = welford.New()
		cal.sweeps = 0
		m.calibEnter(now, CalibSpeed, CalibMin)
	}
}

// sweepPosition returns how far the servo is from middle in decidegrees,
// negative towards the min command. It comes from the filtered feedback and
// the calibrated ADC values and is not clamped to the usable tail range.
func (m *TailMixer) sweepPosition() float64 {
	c := m.cfg
	raw, mid := m.servo.adcFiltered, float64(c.ServoMidADC)
	end, sign := float64(c.ServoMaxADC), 1.0
	if (raw-mid)*(float64(c.ServoMinADC)-mid) > 0 {
		end, sign = float64(c.ServoMinADC), -1.0
	}
	if end == mid {
		return 0
	}
	return sign * m.servo.geometry.MaxDeflection() * (raw - mid) / (end - mid)
}

// calibSpeed times sweeps from min to max
func (m *TailMixer) calibSpeed(now time.Time) {
	cal := &m.tune.ss.cal
	travel := 2 * m.servo.geometry.MaxDeflection()
	low := -travel/2 + travel*speedTimingLow
	high := -travel/2 + travel*speedTimingHigh
	pos := m.sweepPosition()

	switch cal.subState {
	case CalibMin:
		if pos <= low && m.servoStopped(now) {
			m.calibEnter(now, CalibSpeed, CalibMax)
		}
	case CalibMax:
		if !cal.timing {
			if pos > low {
				cal.timing = true
				cal.timingStart = now
			}
			return
		}
		if pos < high {
			return
		}
		if elapsed := now.Sub(cal.timingStart).Seconds(); elapsed > 0 {
			// decidegrees to degrees
			cal.speed.Add((high - low) / 10 / elapsed)
			cal.sweeps++
		}
		if cal.sweeps < m.cfg.ServoCalib.SpeedSamples {
			m.calibEnter(now, CalibSpeed, CalibMin)
			return
		}
		m.finishCalib()
	}
}

func (m *TailMixer) finishCalib() {
	ss := &m.tune.ss
	speed := ss.cal.speed.Mean()
	m.cfg.TailServoSpeed = int16(servo.Constrain(math.Round(speed), 1, math.MaxInt16))
	m.applyConfig()
	log.Infof("servo feedback calibrated: min %d mid %d max %d, speed %d deg/s",
		m.cfg.ServoMinADC, m.cfg.ServoMidADC, m.cfg.ServoMaxADC, m.cfg.TailServoSpeed)
	if err := m.env.Store.Save(m.cfg, m.servo.params); err != nil {
		log.Errorf("failed to save servo calibration: %v", err)
	}
	m.env.Beeper.Beep(BeepReady)
	ss.cal.done = true
	ss.cal.state = CalibIdle
	ss.state = ServoSetupIdle
	ss.servoVal = float64(m.servo.params.Middle)
}
