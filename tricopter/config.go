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
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/lkaino/cleanflight/servo"
)

// Thrust factor limits as stored in config (x10)
const (
	TailThrustFactorMin = 10
	TailThrustFactorMax = 400
)

// TailTuneConfig describes timing of the thrust/torque autotune
type TailTuneConfig struct {
	GyroLimit      float64       `yaml:"gyro_limit"`      // max yaw rate in deg/s that still counts as steady
	StartDelay     time.Duration `yaml:"start_delay"`     // time to take off before sampling starts
	SettleTime     time.Duration `yaml:"settle_time"`     // how long sticks and gyro must be steady before sampling
	SampleInterval time.Duration `yaml:"sample_interval"` // time between servo angle samples
	Samples        int           `yaml:"samples"`         // number of samples to average
	MaxDuration    time.Duration `yaml:"max_duration"`    // sampling must finish within this time
}

// Validate TailTuneConfig is sane
func (c *TailTuneConfig) Validate() error {
	if c.GyroLimit <= 0 {
		return fmt.Errorf("gyro_limit must be greater than zero")
	}
	if c.StartDelay < 0 || c.SettleTime < 0 {
		return fmt.Errorf("start_delay and settle_time must be 0 or positive")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be greater than zero")
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be greater than zero")
	}
	if c.MaxDuration <= c.SettleTime+time.Duration(c.Samples)*c.SampleInterval {
		return fmt.Errorf("max_duration must be longer than settle_time plus sampling time")
	}
	return nil
}

// ServoCalibConfig describes timing of the servo endpoint and speed calibration
type ServoCalibConfig struct {
	StopTolerance float64       `yaml:"stop_tolerance"` // feedback change in ADC counts still considered stopped
	StopTime      time.Duration `yaml:"stop_time"`      // how long feedback must be stable
	AverageWindow time.Duration `yaml:"average_window"` // how long raw feedback is averaged
	Timeout       time.Duration `yaml:"timeout"`        // abort if a step does not finish in time
	SpeedSamples  int           `yaml:"speed_samples"`  // number of sweeps averaged for speed
}

// Validate ServoCalibConfig is sane
func (c *ServoCalibConfig) Validate() error {
	if c.StopTolerance <= 0 {
		return fmt.Errorf("stop_tolerance must be greater than zero")
	}
	if c.StopTime <= 0 || c.AverageWindow <= 0 {
		return fmt.Errorf("stop_time and average_window must be greater than zero")
	}
	if c.Timeout <= c.StopTime+c.AverageWindow {
		return fmt.Errorf("timeout must be longer than stop_time plus average_window")
	}
	if c.SpeedSamples <= 0 {
		return fmt.Errorf("speed_samples must be greater than zero")
	}
	return nil
}

// Config is the tricopter mixer configuration
type Config struct {
	UnarmedServo            bool                 `yaml:"unarmed_servo"`           // keep the tail servo active when disarmed
	ServoFeedback           servo.FeedbackSource `yaml:"servo_feedback"`          // where the servo position comes from
	TailMotorThrustFactor   int16                `yaml:"tail_motor_thrustfactor"` // thrust/torque ratio x10
	TailServoSpeed          int16                `yaml:"tail_servo_speed"`        // deg/s
	ServoMinADC             uint16               `yaml:"servo_min_adc"`
	ServoMidADC             uint16               `yaml:"servo_mid_adc"`
	ServoMaxADC             uint16               `yaml:"servo_max_adc"`
	MotorAccYawCorrection   uint16               `yaml:"motor_acc_yaw_correction"`   // x10
	MotorAcceleration       float64              `yaml:"motor_acceleration"`         // seconds from min to max motor output
	YawBoost                uint16               `yaml:"yaw_boost"`                  // percent
	DynamicYawMaxThrottle   uint16               `yaml:"dynamic_yaw_maxthrottle"`    // percent
	DynamicYawHoverThrottle float64              `yaml:"dynamic_yaw_hoverthrottle"` // 0..1
	TailMotorIndex          int                  `yaml:"tail_motor_index"`
	LoopTime                time.Duration        `yaml:"looptime"`
	Servo                   servo.Params         `yaml:"servo"`
	TailTune                TailTuneConfig       `yaml:"tail_tune"`
	ServoCalib              ServoCalibConfig     `yaml:"servo_calib"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		UnarmedServo:            true,
		ServoFeedback:           servo.FeedbackVirtual,
		TailMotorThrustFactor:   138,
		TailServoSpeed:          300,
		ServoMinADC:             0,
		ServoMidADC:             0,
		ServoMaxADC:             0,
		MotorAccYawCorrection:   6,
		MotorAcceleration:       0.18,
		YawBoost:                100,
		DynamicYawMaxThrottle:   100,
		DynamicYawHoverThrottle: 0.5,
		TailMotorIndex:          0,
		LoopTime:                time.Millisecond,
		Servo:                   servo.DefaultParams(),
		TailTune: TailTuneConfig{
			GyroLimit:      10,
			StartDelay:     5 * time.Second,
			SettleTime:     250 * time.Millisecond,
			SampleInterval: 20 * time.Millisecond,
			Samples:        300,
			MaxDuration:    60 * time.Second,
		},
		ServoCalib: ServoCalibConfig{
			StopTolerance: 10,
			StopTime:      300 * time.Millisecond,
			AverageWindow: 100 * time.Millisecond,
			Timeout:       3 * time.Second,
			SpeedSamples:  5,
		},
	}
}

// ThrustFactor returns the real thrust factor
func (c *Config) ThrustFactor() float64 {
	return float64(c.TailMotorThrustFactor) / 10
}

// FeedbackCalibrated reports whether min/mid/max feedback values look usable
func (c *Config) FeedbackCalibrated() bool {
	return c.ServoMinADC != c.ServoMidADC && c.ServoMidADC != c.ServoMaxADC
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.TailMotorThrustFactor < TailThrustFactorMin || c.TailMotorThrustFactor > TailThrustFactorMax {
		return fmt.Errorf("tail_motor_thrustfactor must be within [%d, %d]", TailThrustFactorMin, TailThrustFactorMax)
	}
	if c.TailServoSpeed <= 0 {
		return fmt.Errorf("tail_servo_speed must be greater than zero")
	}
	if c.ServoFeedback.String() == "UNSUPPORTED" {
		return fmt.Errorf("servo_feedback %d is not supported", c.ServoFeedback)
	}
	if c.ServoFeedback != servo.FeedbackVirtual && !c.FeedbackCalibrated() {
		return fmt.Errorf("servo_min_adc, servo_mid_adc and servo_max_adc must be calibrated for %s feedback", c.ServoFeedback)
	}
	if c.MotorAcceleration <= 0 {
		return fmt.Errorf("motor_acceleration must be greater than zero")
	}
	if c.DynamicYawHoverThrottle <= 0 || c.DynamicYawHoverThrottle >= 1 {
		return fmt.Errorf("dynamic_yaw_hoverthrottle must be within (0, 1)")
	}
	if c.TailMotorIndex < 0 {
		return fmt.Errorf("tail_motor_index must be 0 or positive")
	}
	if c.LoopTime <= 0 {
		return fmt.Errorf("looptime must be greater than zero")
	}
	if err := c.Servo.Validate(); err != nil {
		return fmt.Errorf("invalid servo config: %w", err)
	}
	if err := c.TailTune.Validate(); err != nil {
		return fmt.Errorf("invalid tail tune config: %w", err)
	}
	if err := c.ServoCalib.Validate(); err != nil {
		return fmt.Errorf("invalid servo calibration config: %w", err)
	}
	return nil
}

// ReadConfig reads config from the file, values missing in the file keep their defaults
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.UnmarshalStrict(cData, c)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("bad config %s: %w", path, err)
	}
	return c, nil
}

// WriteConfig stores config into the file
func WriteConfig(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FileStore persists config as yaml after calibration
type FileStore struct {
	Path string
}

// Save writes the config and servo params into the file
func (s *FileStore) Save(c *Config, params *servo.Params) error {
	out := *c
	if params != nil {
		out.Servo = *params
	}
	return WriteConfig(s.Path, &out)
}
