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

// Package sim is a closed loop tricopter yaw simulation driving the tail mixer.
// It stands in for the flight controller, the tail servo with position
// feedback and the yaw dynamics of the frame.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/tricopter"
)

// Config describes the simulated vehicle
type Config struct {
	ThrustFactor  float64 `yaml:"thrust_factor"`  // real thrust/torque ratio of the tail
	ServoSpeed    float64 `yaml:"servo_speed"`    // deg/s
	FeedbackNoise float64 `yaml:"feedback_noise"` // stddev in ADC counts
	YawGain       float64 `yaml:"yaw_gain"`       // deg/s^2 per unit of normalized tail force
	YawDamping    float64 `yaml:"yaw_damping"`    // 1/s
	HoverThrottle float64 `yaml:"hover_throttle"` // 0..1
	RateKp        float64 `yaml:"rate_kp"`
	RateKi        float64 `yaml:"rate_ki"`
	MaxYawRate    float64 `yaml:"max_yaw_rate"` // deg/s at full yaw stick
	Seed          int64   `yaml:"seed"`
}

// DefaultConfig returns a vehicle close to a typical 500 size tricopter
func DefaultConfig() Config {
	return Config{
		ThrustFactor:  14.5,
		ServoSpeed:    260,
		FeedbackNoise: 1,
		YawGain:       5000,
		YawDamping:    2,
		HoverThrottle: 0.5,
		RateKp:        3,
		RateKi:        20,
		MaxYawRate:    200,
		Seed:          1,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.ThrustFactor < servo.ThrustFactorMin || c.ThrustFactor > servo.ThrustFactorMax {
		return fmt.Errorf("thrust_factor must be within [%v, %v]", servo.ThrustFactorMin, servo.ThrustFactorMax)
	}
	if c.ServoSpeed <= 0 {
		return fmt.Errorf("servo_speed must be greater than zero")
	}
	if c.FeedbackNoise < 0 {
		return fmt.Errorf("feedback_noise must be 0 or positive")
	}
	if c.YawGain <= 0 || c.YawDamping < 0 {
		return fmt.Errorf("yaw_gain must be greater than zero and yaw_damping 0 or positive")
	}
	if c.HoverThrottle <= 0 || c.HoverThrottle >= 1 {
		return fmt.Errorf("hover_throttle must be within (0, 1)")
	}
	return nil
}

// motor outputs of the simulated esc
const (
	motorLow  = 1000.0
	motorHigh = 2000.0
	// feedback counts per decidegree and at center
	adcPerDeci = 2.0
	adcCenter  = 2048.0
)

// Sim is a running simulation. It is not safe for concurrent use.
type Sim struct {
	cfg    Config
	mixCfg *tricopter.Config
	params *servo.Params
	output int16
	mixer  *tricopter.TailMixer
	rnd    *rand.Rand

	now  time.Time
	dT   time.Duration
	tick int64

	// servo position in command space, decidegrees
	servoPos float64
	yawRate  float64
	tailOut  float64

	armed    bool
	tune     bool
	throttle float64
	sticks   [3]float64
	integral float64

	beeps map[tricopter.BeepPattern]int
}

// New creates a simulation around a new tail mixer using mixCfg. Calibration
// results are written to mixCfg and saved to store.
func New(cfg Config, mixCfg *tricopter.Config, store tricopter.Store, stats tricopter.StatsServer) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params := mixCfg.Servo
	s := &Sim{
		cfg:      cfg,
		mixCfg:   mixCfg,
		params:   &params,
		rnd:      rand.New(rand.NewSource(cfg.Seed)),
		now:      time.Unix(0, 0),
		dT:       mixCfg.LoopTime,
		servoPos: servo.AngleMid,
		throttle: cfg.HoverThrottle,
		tailOut:  motorLow,
		beeps:    map[tricopter.BeepPattern]int{},
	}
	env := tricopter.Env{
		ADC:    s,
		Flight: s,
		Motors: s,
		Clock:  s,
		Beeper: s,
		Store:  store,
		Stats:  stats,
	}
	s.mixer = tricopter.NewTailMixer(mixCfg, env)
	s.mixer.Init(s.params, &s.output)
	return s, nil
}

// Mixer returns the tail mixer under test
func (s *Sim) Mixer() *tricopter.TailMixer { return s.mixer }

// Params returns servo params, updated by servo setup
func (s *Sim) Params() *servo.Params { return s.params }

// ServoOutput returns the current servo command
func (s *Sim) ServoOutput() int16 { return s.output }

// Elapsed returns simulated time
func (s *Sim) Elapsed() time.Duration { return time.Duration(s.tick) * s.dT }

// LoopTime returns the simulated loop time
func (s *Sim) LoopTime() time.Duration { return s.dT }

// RateError returns the yaw rate the pilot asks for minus the measured yaw rate
func (s *Sim) RateError() float64 {
	return s.sticks[tricopter.AxisYaw]/500*s.cfg.MaxYawRate - s.yawRate
}

// TailAngle returns the real tail angle in decidegrees
func (s *Sim) TailAngle() float64 {
	if s.params.Rate < 0 {
		return 2*servo.AngleMid - s.servoPos
	}
	return s.servoPos
}

// Beeps returns how many times the pattern was beeped
func (s *Sim) Beeps(p tricopter.BeepPattern) int { return s.beeps[p] }

// SetArmed arms or disarms the vehicle
func (s *Sim) SetArmed(armed bool) {
	if armed != s.armed {
		s.integral = 0
	}
	s.armed = armed
}

// SetTailTune flips the tail tune switch
func (s *Sim) SetTailTune(on bool) { s.tune = on }

// SetThrottle sets throttle in [0, 1]
func (s *Sim) SetThrottle(throttle float64) { s.throttle = servo.Constrain(throttle, 0, 1) }

// SetStick sets a stick deflection in [-500, 500]
func (s *Sim) SetStick(axis tricopter.Axis, v float64) { s.sticks[axis] = servo.Constrain(v, -500, 500) }

// Sample implements tricopter.ADC
func (s *Sim) Sample(servo.FeedbackSource) uint16 {
	v := adcCenter + adcPerDeci*(s.servoPos-servo.AngleMid)
	if s.cfg.FeedbackNoise > 0 {
		v += s.rnd.NormFloat64() * s.cfg.FeedbackNoise
	}
	return uint16(servo.Constrain(math.Round(v), 0, 4095))
}

// Armed implements tricopter.FlightState
func (s *Sim) Armed() bool { return s.armed }

// ThrottleHigh implements tricopter.FlightState
func (s *Sim) ThrottleHigh() bool { return s.throttle > 0.1 }

// Throttle implements tricopter.FlightState
func (s *Sim) Throttle() float64 { return s.throttle }

// RCCommand implements tricopter.FlightState
func (s *Sim) RCCommand(axis tricopter.Axis) float64 { return s.sticks[axis] }

// GyroYawRate implements tricopter.FlightState
func (s *Sim) GyroYawRate() float64 { return s.yawRate }

// TailTuneRequested implements tricopter.FlightState
func (s *Sim) TailTuneRequested() bool { return s.tune }

// Output implements tricopter.Motors
func (s *Sim) Output(int) float64 { return s.tailOut }

// OutputRange implements tricopter.Motors
func (s *Sim) OutputRange() (float64, float64) { return motorLow, motorHigh }

// Now implements tricopter.Clock
func (s *Sim) Now() time.Time { return s.now }

// Beep implements tricopter.Beeper
func (s *Sim) Beep(p tricopter.BeepPattern) {
	s.beeps[p]++
	log.Debugf("beep %d at %v", p, s.Elapsed())
}

// Step advances the simulation by one loop
func (s *Sim) Step() {
	s.tick++
	s.now = s.now.Add(s.dT)
	dt := s.dT.Seconds()

	// rate controller
	pid := 0.0
	if s.armed {
		e := s.RateError()
		s.integral = servo.Constrain(s.integral+e*dt, -500/s.cfg.RateKi, 500/s.cfg.RateKi)
		pid = servo.Constrain(s.cfg.RateKp*e+s.cfg.RateKi*s.integral, -500, 500)
	}
	s.mixer.MixYaw(pid, 500)

	// outer mixer
	tail := motorLow
	if s.armed {
		tail = motorLow + s.throttle*(motorHigh-motorLow)
		tail += float64(s.mixer.MotorCorrection(s.mixCfg.TailMotorIndex))
		tail = servo.Constrain(tail, motorLow, motorHigh)
	}
	s.tailOut = tail

	// servo follows the command at its own speed
	target := s.commandPosition(float64(s.output))
	step := s.cfg.ServoSpeed * 10 * dt
	if math.Abs(target-s.servoPos) <= step {
		s.servoPos = target
	} else {
		s.servoPos += math.Copysign(step, target-s.servoPos)
	}

	// frame yaw
	thrust := (tail - motorLow) / (motorHigh - motorLow)
	a := servo.DeciToRad(s.TailAngle())
	force := -math.Cos(a) - math.Sin(a)/s.cfg.ThrustFactor
	acc := s.cfg.YawGain*thrust*force - s.cfg.YawDamping*s.yawRate
	if !s.armed {
		// on the ground
		acc = -s.yawRate / dt
	}
	s.yawRate += acc * dt
}

// commandPosition returns where the servo arm goes for the command,
// the mechanical range is +-MaxAngle around the middle command
func (s *Sim) commandPosition(value float64) float64 {
	p := s.params
	mid := float64(p.Middle)
	if value >= mid {
		span := float64(p.Max) - mid
		if span <= 0 {
			return servo.AngleMid
		}
		return servo.Constrain(servo.AngleMid+(value-mid)/span*servo.MaxAngle, servo.AngleMid, servo.AngleMid+servo.MaxAngle)
	}
	span := mid - float64(p.Min)
	if span <= 0 {
		return servo.AngleMid
	}
	return servo.Constrain(servo.AngleMid-(mid-value)/span*servo.MaxAngle, servo.AngleMid-servo.MaxAngle, servo.AngleMid)
}

// Run steps the simulation for d
func (s *Sim) Run(d time.Duration) {
	n := int64(d / s.dT)
	for i := int64(0); i < n; i++ {
		s.Step()
	}
}
