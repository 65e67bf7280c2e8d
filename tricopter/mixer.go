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

// Package tricopter implements the tail mixer of a tricopter: yaw to tail
// servo conversion, pitch correction of the tail motor and the tail tune
// procedures calibrating both.
package tricopter

import (
	"math"
	"time"

	"github.com/lkaino/cleanflight/servo"
)

const (
	// SaturationDPSErrorLimit is the rate error above which a saturated servo is reported
	SaturationDPSErrorLimit = 100.0
	// MotorAccCorrectionMax bounds the tail motor pitch correction
	MotorAccCorrectionMax = 200.0

	// servo lagging the demanded angle by more than this is saturated
	saturationAngleError = 75.0
	// motor acceleration yaw correction is limited to this share of max yaw output
	maxAccYawCorrection = 0.2
)

type tailServo struct {
	params    *servo.Params
	output    *int16
	geometry  *servo.Geometry
	adcFilter *servo.PT1Filter

	angle       float64 // current measured angle
	prevAngle   float64 // angle on the previous tick
	setpoint    float64 // rate limited angle setpoint
	adcRaw      uint16
	adcFiltered float64
	saturated   bool
}

// TailMixer owns the tail servo, tail motor and tail tune state of one vehicle.
// It is not safe for concurrent use, all methods must be called from the control loop.
type TailMixer struct {
	cfg         *Config
	env         Env
	dT          time.Duration
	initialized bool

	servo tailServo
	motor tailMotor
	tune  tailTune
}

// NewTailMixer creates the mixer. Filters are built for cfg.LoopTime,
// call InitFilters when the loop time is known to differ.
func NewTailMixer(cfg *Config, env Env) *TailMixer {
	env.fillDefaults()
	m := &TailMixer{
		cfg: cfg,
		env: env,
	}
	m.InitFilters(cfg.LoopTime)
	return m
}

// Init wires the servo configuration and the output the servo driver reads.
// It must run before any tick function.
func (m *TailMixer) Init(params *servo.Params, output *int16) {
	m.servo.params = params
	m.servo.output = output
	m.applyConfig()

	m.servo.angle = servo.AngleMid
	m.servo.prevAngle = servo.AngleMid
	m.servo.setpoint = servo.AngleMid
	m.servo.saturated = false
	*m.servo.output = params.Middle
	m.motor.seeded = false
	m.tune = tailTune{}
	m.initialized = true
}

// InitFilters rebuilds the feedback filters for the loop time
func (m *TailMixer) InitFilters(looptime time.Duration) {
	if looptime <= 0 {
		looptime = m.cfg.LoopTime
	}
	m.dT = looptime
	m.servo.adcFilter = servo.NewPT1Filter(servo.FeedbackCutoffHz, looptime)
	m.motor.filter = servo.NewPT1Filter(servo.MotorFeedbackCutoffHz, looptime)
	if m.initialized {
		m.initMotor()
	}
}

// applyConfig rebuilds everything derived from the config
func (m *TailMixer) applyConfig() {
	m.servo.geometry = servo.NewGeometry(m.cfg.ThrustFactor(), m.servo.params.MaxDeflection())
	m.initMotor()
}

// Geometry returns the current tail model
func (m *TailMixer) Geometry() *servo.Geometry {
	return m.servo.geometry
}

// MixYaw converts the yaw PID output in [-pidSumLimit, pidSumLimit] into
// a tail servo command and writes it to the output
func (m *TailMixer) MixYaw(scaledYawPid, pidSumLimit float64) {
	now := m.env.Clock.Now()
	m.motorStep()
	m.updateServoAngle()

	if m.tailTuneHandler(now) {
		m.servo.saturated = false
		m.report()
		return
	}

	g := m.servo.geometry
	maxYaw := g.MaxYawOutput()
	yaw := 0.0
	if pidSumLimit > 0 {
		yaw = servo.Constrain(scaledYawPid, -pidSumLimit, pidSumLimit) / pidSumLimit * maxYaw * m.dynamicYawFactor()
	}
	yaw -= m.motorAccYawCorrection(maxYaw)
	limited := servo.Constrain(yaw, -maxYaw, maxYaw)

	target := g.AngleForYawOutput(limited)
	step := float64(m.cfg.TailServoSpeed) * 10 * m.dT.Seconds()
	setpoint := servo.Constrain(target, m.servo.setpoint-step, m.servo.setpoint+step)
	m.servo.setpoint = g.Clamp(setpoint)

	m.writeOutput(g.ServoValueAtAngle(*m.servo.params, m.servo.setpoint))
	m.servo.saturated = limited != yaw || math.Abs(target-m.servo.angle) > saturationAngleError
	m.report()
}

// dynamicYawFactor boosts yaw at low throttle and attenuates it at high throttle
func (m *TailMixer) dynamicYawFactor() float64 {
	t := servo.Constrain(m.env.Flight.Throttle(), 0, 1)
	hover := servo.Constrain(m.cfg.DynamicYawHoverThrottle, 0.05, 0.95)
	if t < hover {
		boost := float64(m.cfg.YawBoost) / 100
		return boost + (1-boost)*t/hover
	}
	atMax := float64(m.cfg.DynamicYawMaxThrottle) / 100
	return 1 + (atMax-1)*(t-hover)/(1-hover)
}

// motorAccYawCorrection counters the reaction torque of the tail prop speeding up or slowing down
func (m *TailMixer) motorAccYawCorrection(maxYaw float64) float64 {
	if m.cfg.MotorAccYawCorrection == 0 || m.dT <= 0 {
		return 0
	}
	low, high := m.env.Motors.OutputRange()
	if high <= low {
		return 0
	}
	// full output ranges per second
	acc := (m.motor.virtualFeedBack - m.motor.prevFeedBack) / m.dT.Seconds() / (high - low)
	corr := acc * float64(m.cfg.MotorAccYawCorrection) * 10
	limit := maxYaw * maxAccYawCorrection
	return servo.Constrain(corr, -limit, limit)
}

func (m *TailMixer) updateServoAngle() {
	m.servo.prevAngle = m.servo.angle
	g := m.servo.geometry
	p := m.servo.params

	if m.cfg.ServoFeedback == servo.FeedbackVirtual {
		target := g.AngleAtServoValue(*p, float64(*m.servo.output))
		dA := float64(m.cfg.TailServoSpeed) * 10 * m.dT.Seconds()
		m.servo.angle = approach(m.servo.angle, target, dA)
		return
	}

	m.servo.adcRaw = m.env.ADC.Sample(m.cfg.ServoFeedback)
	m.servo.adcFiltered = m.servo.adcFilter.Apply(float64(m.servo.adcRaw))
	angle := g.AngleFromADC(m.servo.adcFiltered, float64(m.cfg.ServoMinADC), float64(m.cfg.ServoMidADC), float64(m.cfg.ServoMaxADC))
	if p.Rate < 0 {
		angle = g.Clamp(2*servo.AngleMid - angle)
	}
	m.servo.angle = angle
}

// approach moves v towards target by at most step
func approach(v, target, step float64) float64 {
	if math.Abs(target-v) <= step {
		return target
	}
	if target > v {
		return v + step
	}
	return v - step
}

func (m *TailMixer) writeOutput(value float64) {
	p := m.servo.params
	low := math.Min(float64(p.Min), float64(p.Max))
	high := math.Max(float64(p.Min), float64(p.Max))
	*m.servo.output = int16(math.Round(servo.Constrain(value, low, high)))
}

// CurrentServoAngle returns the measured tail angle in decidegrees
func (m *TailMixer) CurrentServoAngle() float64 {
	return m.servo.angle
}

// EnabledWhenUnarmed tells whether the tail servo should be driven while disarmed
func (m *TailMixer) EnabledWhenUnarmed() bool {
	return m.cfg.UnarmedServo
}

// InUse tells whether the mixer has been wired to a servo
func (m *TailMixer) InUse() bool {
	return m.initialized
}

// IsServoSaturated reports that the tail cannot follow the demanded yaw rate
func (m *TailMixer) IsServoSaturated(rateError float64) bool {
	return math.Abs(rateError) > SaturationDPSErrorLimit && m.servo.saturated
}

// Snapshot is the mixer state for telemetry
type Snapshot struct {
	Angle         float64 `json:"angle"`
	Setpoint      float64 `json:"setpoint"`
	Output        int16   `json:"output"`
	ADCRaw        uint16  `json:"adc_raw"`
	Saturated     bool    `json:"saturated"`
	MotorFeedback float64 `json:"motor_feedback"`
	TailTuneMode  string  `json:"tail_tune_mode"`
	ThrustTorque  string  `json:"thrust_torque"`
	ServoSetup    string  `json:"servo_setup"`
	ThrustFactor  int16   `json:"thrust_factor"`
	ServoSpeed    int16   `json:"servo_speed"`
	ServoMinADC   uint16  `json:"servo_min_adc"`
	ServoMidADC   uint16  `json:"servo_mid_adc"`
	ServoMaxADC   uint16  `json:"servo_max_adc"`
}

// Snapshot returns the current state
func (m *TailMixer) Snapshot() Snapshot {
	s := Snapshot{
		Angle:         m.servo.angle,
		Setpoint:      m.servo.setpoint,
		ADCRaw:        m.servo.adcRaw,
		Saturated:     m.servo.saturated,
		MotorFeedback: m.motor.virtualFeedBack,
		TailTuneMode:  m.tune.mode.String(),
		ThrustTorque:  m.tune.tt.state.String(),
		ServoSetup:    m.tune.ss.state.String(),
		ThrustFactor:  m.cfg.TailMotorThrustFactor,
		ServoSpeed:    m.cfg.TailServoSpeed,
		ServoMinADC:   m.cfg.ServoMinADC,
		ServoMidADC:   m.cfg.ServoMidADC,
		ServoMaxADC:   m.cfg.ServoMaxADC,
	}
	if m.servo.output != nil {
		s.Output = *m.servo.output
	}
	return s
}

func (m *TailMixer) report() {
	st := m.env.Stats
	st.SetCounter("tail.servo.angle", int64(math.Round(m.servo.angle)))
	st.SetCounter("tail.servo.output", int64(*m.servo.output))
	st.SetCounter("tail.motor.feedback", int64(math.Round(m.motor.virtualFeedBack)))
	st.SetCounter("tail.tune.mode", int64(m.tune.mode))
	st.SetCounter("tail.tune.thrust_torque", int64(m.tune.tt.state))
	st.SetCounter("tail.tune.servo_setup", int64(m.tune.ss.state))
	if m.servo.saturated {
		st.UpdateCounterBy("tail.servo.saturated", 1)
	}
}
