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

// Package servo models the tail servo of a tricopter: the mapping between
// feedback, servo commands and physical tail angle, and the thrust/torque
// curve used to linearize yaw.
package servo

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Angles are in decidegrees, 900 is the tail pointing straight back
const (
	AngleMid  = 900.0
	MaxAngle  = 500.0
	CurveSize = 100

	// ValueMin and ValueMax bound servo commands in microseconds
	ValueMin = 950.0
	ValueMax = 2050.0

	// ThrustFactorMin and ThrustFactorMax bound the tail motor thrust factor
	ThrustFactorMin = 1.0
	ThrustFactorMax = 40.0
)

// FeedbackSource tells where the tail servo position is read from
type FeedbackSource uint8

// All supported feedback sources
const (
	FeedbackVirtual FeedbackSource = iota
	FeedbackRSSI
	FeedbackCurrent
	FeedbackExt1
)

var feedbackSourceToString = map[FeedbackSource]string{
	FeedbackVirtual: "virtual",
	FeedbackRSSI:    "rssi",
	FeedbackCurrent: "current",
	FeedbackExt1:    "ext1",
}

func (s FeedbackSource) String() string {
	if v, ok := feedbackSourceToString[s]; ok {
		return v
	}
	return "UNSUPPORTED"
}

// FeedbackSourceFromString parses feedback source name
func FeedbackSourceFromString(name string) (FeedbackSource, error) {
	for k, v := range feedbackSourceToString {
		if strings.EqualFold(v, name) {
			return k, nil
		}
	}
	return FeedbackVirtual, fmt.Errorf("unknown feedback source %q", name)
}

// MarshalYAML stores the source by name
func (s FeedbackSource) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads the source by name
func (s *FeedbackSource) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	v, err := FeedbackSourceFromString(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Params is the PWM configuration of the tail servo
type Params struct {
	Min    int16 `yaml:"min"`
	Middle int16 `yaml:"middle"`
	Max    int16 `yaml:"max"`
	Rate   int8  `yaml:"rate"` // percent of MaxAngle, negative reverses the servo
}

// DefaultParams returns params of a typical digital servo
func DefaultParams() Params {
	return Params{
		Min:    1000,
		Middle: 1500,
		Max:    2000,
		Rate:   100,
	}
}

// Validate Params are sane
func (p *Params) Validate() error {
	if float64(p.Min) < ValueMin || float64(p.Max) > ValueMax {
		return fmt.Errorf("servo min and max must be within [%v, %v]", ValueMin, ValueMax)
	}
	if p.Min >= p.Middle || p.Middle >= p.Max {
		return fmt.Errorf("servo limits must be ordered min < middle < max")
	}
	if p.Rate == 0 || p.Rate > 100 || p.Rate < -100 {
		return fmt.Errorf("servo rate must be within [-100, 100] and not zero")
	}
	return nil
}

// MaxDeflection returns how far the tail tilts from straight back, in decidegrees
func (p Params) MaxDeflection() float64 {
	rate := float64(p.Rate)
	if rate < 0 {
		rate = -rate
	}
	if rate == 0 {
		return MaxAngle
	}
	return Constrain(MaxAngle*rate/100, 1, MaxAngle)
}

// Constrain returns v limited to [low, high]
func Constrain[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
