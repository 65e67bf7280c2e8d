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

package servo

import (
	"math"
	"time"
)

// Low-pass cutoffs for the feedback channels
const (
	FeedbackCutoffHz      = 70.0
	MotorFeedbackCutoffHz = 5.0
)

// PT1Filter is a first order low-pass filter running at a fixed rate
type PT1Filter struct {
	k      float64
	state  float64
	seeded bool
}

// PT1Gain returns the filter gain for the cutoff frequency at the given loop time
func PT1Gain(cutoffHz float64, dT time.Duration) float64 {
	dt := dT.Seconds()
	if dt <= 0 || cutoffHz <= 0 {
		return 1
	}
	rc := 1 / (2 * math.Pi * cutoffHz)
	return dt / (rc + dt)
}

// NewPT1Filter creates a filter. dT must be the loop time the filter is applied at.
func NewPT1Filter(cutoffHz float64, dT time.Duration) *PT1Filter {
	return &PT1Filter{k: PT1Gain(cutoffHz, dT)}
}

// Apply feeds a sample and returns the filtered value. The first sample seeds the filter.
func (f *PT1Filter) Apply(input float64) float64 {
	if !f.seeded {
		f.state = input
		f.seeded = true
		return f.state
	}
	f.state += f.k * (input - f.state)
	return f.state
}

// Value returns the last filtered value
func (f *PT1Filter) Value() float64 {
	return f.state
}

// Reset - restart the filter from the value
func (f *PT1Filter) Reset(value float64) {
	f.state = value
	f.seeded = true
}
