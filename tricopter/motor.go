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

	"github.com/lkaino/cleanflight/servo"
)

// tailMotor estimates the real tail motor speed from the commanded output.
// The motor can't change speed instantly, the estimate is used to predict
// when the pitch correction will take effect.
type tailMotor struct {
	filter *servo.PT1Filter
	seeded bool

	acceleration float64 // output units per second
	current      float64 // output with acceleration limit

	virtualFeedBack float64
	prevFeedBack    float64

	accelerationDelay      time.Duration
	decelerationDelay      time.Duration
	accelerationDelayAngle float64
	decelerationDelayAngle float64
}

func (m *TailMixer) initMotor() {
	low, high := m.env.Motors.OutputRange()
	m.motor.acceleration = (high - low) / m.cfg.MotorAcceleration

	lag := 1 / (2 * math.Pi * servo.MotorFeedbackCutoffHz)
	delay := lag
	if m.motor.acceleration > 0 {
		delay += MotorAccCorrectionMax / m.motor.acceleration
	}
	m.motor.accelerationDelay = time.Duration(delay * float64(time.Second))
	// slowing down relies on drag alone
	m.motor.decelerationDelay = 2 * m.motor.accelerationDelay

	speed := float64(m.cfg.TailServoSpeed) * 10
	m.motor.accelerationDelayAngle = speed * m.motor.accelerationDelay.Seconds()
	m.motor.decelerationDelayAngle = speed * m.motor.decelerationDelay.Seconds()
}

func (m *TailMixer) motorStep() {
	setpoint := m.env.Motors.Output(m.cfg.TailMotorIndex)
	if !m.motor.seeded {
		m.motor.current = setpoint
		m.motor.filter.Reset(setpoint)
		m.motor.virtualFeedBack = setpoint
		m.motor.prevFeedBack = setpoint
		m.motor.seeded = true
		return
	}
	m.motor.current = approach(m.motor.current, setpoint, m.motor.acceleration*m.dT.Seconds())
	m.motor.prevFeedBack = m.motor.virtualFeedBack
	m.motor.virtualFeedBack = m.motor.filter.Apply(m.motor.current)
}

// MotorCorrection returns the output to add to the motor so the vertical
// thrust of the tail stays constant when the tail tilts. Only the tail
// motor is corrected.
func (m *TailMixer) MotorCorrection(motorIndex int) int16 {
	if motorIndex != m.cfg.TailMotorIndex || !m.initialized {
		return 0
	}
	low, _ := m.env.Motors.OutputRange()
	throttle := m.motor.virtualFeedBack - low
	if throttle <= 0 {
		return 0
	}

	g := m.servo.geometry
	tf := g.ThrustFactor()
	angle := m.servo.angle
	prev := m.servo.prevAngle
	future := angle
	if delta := angle - prev; delta != 0 && m.dT > 0 {
		delay, maxLead := m.motor.decelerationDelay, m.motor.decelerationDelayAngle
		if servo.PitchCorrection(angle, tf) > servo.PitchCorrection(prev, tf) {
			delay, maxLead = m.motor.accelerationDelay, m.motor.accelerationDelayAngle
		}
		lead := math.Min(math.Abs(delta)/m.dT.Seconds()*delay.Seconds(), maxLead)
		future = g.Clamp(angle + math.Copysign(lead, delta))
	}

	correction := throttle*servo.PitchCorrection(future, tf) - throttle
	return int16(math.Round(servo.Constrain(correction, -MotorAccCorrectionMax, MotorAccCorrectionMax)))
}
