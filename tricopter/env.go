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

//go:generate mockgen -source=env.go -destination=mock_env.go -package=tricopter

import (
	"time"

	"github.com/lkaino/cleanflight/servo"
)

// Axis is a stick axis
type Axis uint8

// Stick axes
const (
	AxisRoll Axis = iota
	AxisPitch
	AxisYaw
)

// ADC gives the latest raw sample of a feedback channel
type ADC interface {
	Sample(source servo.FeedbackSource) uint16
}

// FlightState is what the flight controller shares with the tail mixer every tick
type FlightState interface {
	Armed() bool
	// ThrottleHigh reports the throttle stick is above idle
	ThrottleHigh() bool
	// Throttle returns throttle in [0, 1]
	Throttle() float64
	// RCCommand returns the stick deflection in [-500, 500]
	RCCommand(axis Axis) float64
	// GyroYawRate returns the yaw rate in deg/s
	GyroYawRate() float64
	// TailTuneRequested reports the tail tune switch is on
	TailTuneRequested() bool
}

// Motors gives the motor outputs computed by the outer mixer
type Motors interface {
	Output(index int) float64
	OutputRange() (low, high float64)
}

// Clock tells the time of the current tick
type Clock interface {
	Now() time.Time
}

// BeepPattern is a notification for the operator
type BeepPattern uint8

// Beep patterns
const (
	BeepShort BeepPattern = iota
	BeepLong
	BeepReady
	BeepFail
	BeepConfirm1
	BeepConfirm2
	BeepConfirm3
)

// Beeper notifies the operator
type Beeper interface {
	Beep(pattern BeepPattern)
}

// Store persists calibration results
type Store interface {
	Save(c *Config, params *servo.Params) error
}

// StatsServer is a stats server interface
type StatsServer interface {
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
}

// Env groups collaborators of the mixer. Beeper, Store and Stats are optional.
type Env struct {
	ADC    ADC
	Flight FlightState
	Motors Motors
	Clock  Clock
	Beeper Beeper
	Store  Store
	Stats  StatsServer
}

type noBeeper struct{}

func (noBeeper) Beep(BeepPattern) {}

type noStats struct{}

func (noStats) SetCounter(string, int64)      {}
func (noStats) UpdateCounterBy(string, int64) {}

type noStore struct{}

func (noStore) Save(*Config, *servo.Params) error { return nil }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (e *Env) fillDefaults() {
	if e.Beeper == nil {
		e.Beeper = noBeeper{}
	}
	if e.Stats == nil {
		e.Stats = noStats{}
	}
	if e.Store == nil {
		e.Store = noStore{}
	}
	if e.Clock == nil {
		e.Clock = wallClock{}
	}
}
