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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lkaino/cleanflight/servo"
)

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig("/does/not/exist")
	require.Error(t, err)
}

func TestReadConfigDefaults(t *testing.T) {
	f, err := os.CreateTemp("", "tricopter")
	require.NoError(t, err)
	defer os.Remove(f.Name()) // clean up
	cfg, err := ReadConfig(f.Name())
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 13.8, cfg.ThrustFactor())
}

func TestReadConfig(t *testing.T) {
	f, err := os.CreateTemp("", "tricopter")
	require.NoError(t, err)
	defer os.Remove(f.Name()) // clean up
	_, err = f.Write([]byte(`servo_feedback: CURRENT
tail_motor_thrustfactor: 152
tail_servo_speed: 280
servo_min_adc: 1020
servo_mid_adc: 2010
servo_max_adc: 3050
looptime: 2ms
servo:
  min: 1050
  middle: 1480
  max: 1950
  rate: -90
tail_tune:
  start_delay: 3s
`))
	require.NoError(t, err)
	cfg, err := ReadConfig(f.Name())
	require.NoError(t, err)

	want := DefaultConfig()
	want.ServoFeedback = servo.FeedbackCurrent
	want.TailMotorThrustFactor = 152
	want.TailServoSpeed = 280
	want.ServoMinADC = 1020
	want.ServoMidADC = 2010
	want.ServoMaxADC = 3050
	want.LoopTime = 2 * time.Millisecond
	want.Servo = servo.Params{Min: 1050, Middle: 1480, Max: 1950, Rate: -90}
	want.TailTune.StartDelay = 3 * time.Second
	require.Equal(t, want, cfg)
}

func TestReadConfigUnknownField(t *testing.T) {
	f, err := os.CreateTemp("", "tricopter")
	require.NoError(t, err)
	defer os.Remove(f.Name()) // clean up
	_, err = f.Write([]byte("tail_motor_thrust: 150\n"))
	require.NoError(t, err)
	_, err = ReadConfig(f.Name())
	require.Error(t, err)
}

func TestReadConfigInvalid(t *testing.T) {
	f, err := os.CreateTemp("", "tricopter")
	require.NoError(t, err)
	defer os.Remove(f.Name()) // clean up
	_, err = f.Write([]byte("servo_feedback: rssi\n"))
	require.NoError(t, err)
	_, err = ReadConfig(f.Name())
	require.ErrorContains(t, err, "must be calibrated for rssi feedback")
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	c.TailMotorThrustFactor = 5
	require.ErrorContains(t, c.Validate(), "tail_motor_thrustfactor")

	c = DefaultConfig()
	c.DynamicYawHoverThrottle = 1
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.Servo.Middle = 2100
	require.ErrorContains(t, c.Validate(), "invalid servo config")

	c = DefaultConfig()
	c.TailTune.MaxDuration = time.Second
	require.ErrorContains(t, c.Validate(), "invalid tail tune config")

	c = DefaultConfig()
	c.ServoCalib.Timeout = 100 * time.Millisecond
	require.ErrorContains(t, c.Validate(), "invalid servo calibration config")

	c = DefaultConfig()
	c.ServoFeedback = servo.FeedbackSource(9)
	require.ErrorContains(t, c.Validate(), "not supported")
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tricopter.yaml")
	s := &FileStore{Path: path}
	c := DefaultConfig()
	c.TailServoSpeed = 260
	p := servo.Params{Min: 1010, Middle: 1510, Max: 2010, Rate: 100}
	require.NoError(t, s.Save(c, &p))

	got, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, int16(260), got.TailServoSpeed)
	require.Equal(t, p, got.Servo)
	require.Equal(t, servo.DefaultParams(), c.Servo)
}
