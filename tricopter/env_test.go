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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lkaino/cleanflight/servo"
)

type fakeFlight struct {
	armed        bool
	throttleHigh bool
	throttle     float64
	sticks       [3]float64
	gyro         float64
	tune         bool
}

func (f *fakeFlight) Armed() bool                 { return f.armed }
func (f *fakeFlight) ThrottleHigh() bool          { return f.throttleHigh }
func (f *fakeFlight) Throttle() float64           { return f.throttle }
func (f *fakeFlight) RCCommand(axis Axis) float64 { return f.sticks[axis] }
func (f *fakeFlight) GyroYawRate() float64        { return f.gyro }
func (f *fakeFlight) TailTuneRequested() bool     { return f.tune }

type fakeMotors struct {
	outputs   []float64
	low, high float64
}

func (m *fakeMotors) Output(index int) float64 { return m.outputs[index] }
func (m *fakeMotors) OutputRange() (float64, float64) {
	return m.low, m.high
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeBeeper struct {
	beeps []BeepPattern
}

func (b *fakeBeeper) Beep(p BeepPattern) { b.beeps = append(b.beeps, p) }

func (b *fakeBeeper) count(p BeepPattern) int {
	n := 0
	for _, b := range b.beeps {
		if b == p {
			n++
		}
	}
	return n
}

// fakeServo is a servo with position feedback moving towards the commanded
// output at a fixed speed. Feedback is 2 counts per decidegree around 2048.
type fakeServo struct {
	output *int16
	params *servo.Params
	speed  float64 // deg/s
	dT     time.Duration
	angle  float64
	noise  func() float64
}

func (s *fakeServo) Sample(servo.FeedbackSource) uint16 {
	if s.output != nil {
		span := float64(s.params.Max - s.params.Middle)
		target := servo.AngleMid + (float64(*s.output)-float64(s.params.Middle))/span*servo.MaxAngle
		s.angle = approach(s.angle, target, s.speed*10*s.dT.Seconds())
	}
	v := 2048 + 2*(s.angle-servo.AngleMid)
	if s.noise != nil {
		v += s.noise()
	}
	return uint16(v)
}

type testRig struct {
	cfg    *Config
	params *servo.Params
	output int16
	flight *fakeFlight
	motors *fakeMotors
	clock  *fakeClock
	beeper *fakeBeeper
	mixer  *TailMixer
}

func newTestRig(t *testing.T, cfg *Config, adc ADC, store Store) *testRig {
	t.Helper()
	params := cfg.Servo
	r := &testRig{
		cfg:    cfg,
		params: &params,
		flight: &fakeFlight{throttle: 0.5},
		motors: &fakeMotors{outputs: []float64{1500, 1500, 1500}, low: 1000, high: 2000},
		clock:  &fakeClock{now: time.Unix(1700000000, 0)},
		beeper: &fakeBeeper{},
	}
	env := Env{
		ADC:    adc,
		Flight: r.flight,
		Motors: r.motors,
		Clock:  r.clock,
		Beeper: r.beeper,
		Store:  store,
	}
	r.mixer = NewTailMixer(cfg, env)
	r.mixer.Init(r.params, &r.output)
	require.True(t, r.mixer.InUse())
	return r
}

// tick advances time by one loop and runs the mixer
func (r *testRig) tick(scaledYawPid float64) {
	r.clock.now = r.clock.now.Add(r.cfg.LoopTime)
	r.mixer.MixYaw(scaledYawPid, 500)
}

func (r *testRig) run(n int, scaledYawPid float64) {
	for i := 0; i < n; i++ {
		r.tick(scaledYawPid)
	}
}
