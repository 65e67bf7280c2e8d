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

package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/tricopter"
)

type memStore struct {
	saved int
	cfg   tricopter.Config
}

func (s *memStore) Save(c *tricopter.Config, _ *servo.Params) error {
	s.saved++
	s.cfg = *c
	return nil
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	c.ThrustFactor = 0.5
	require.Error(t, c.Validate())
	c = DefaultConfig()
	c.HoverThrottle = 1
	require.Error(t, c.Validate())
	c = DefaultConfig()
	c.ServoSpeed = 0
	require.Error(t, c.Validate())

	_, err := New(c, tricopter.DefaultConfig(), nil, nil)
	require.Error(t, err)
}

func TestHoverHoldsHeading(t *testing.T) {
	s, err := New(DefaultConfig(), tricopter.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	rate := s.YawStep(0, 3*time.Second)
	require.InDelta(t, 0, rate, 1)
	// the controller finds the real zero torque angle
	require.InDelta(t, 900+servo.RadToDeci(math.Atan(1/14.5)), s.TailAngle(), 2)

	rate = s.YawStep(250, 3*time.Second)
	require.InDelta(t, 100, rate, 5)
	rate = s.YawStep(-250, 3*time.Second)
	require.InDelta(t, -100, rate, 5)
}

func TestAutotune(t *testing.T) {
	store := &memStore{}
	mixCfg := tricopter.DefaultConfig()
	s, err := New(DefaultConfig(), mixCfg, store, nil)
	require.NoError(t, err)

	tf, err := s.RunAutotune(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 145, tf, 3)
	require.Equal(t, tf, mixCfg.TailMotorThrustFactor)
	require.Equal(t, 1, store.saved)
	require.Equal(t, tf, store.cfg.TailMotorThrustFactor)
	require.Equal(t, tricopter.TailTuneNone, s.Mixer().TailTuneMode())
	require.InDelta(t, 939.5, s.Mixer().Geometry().PitchZeroAngle(), 2)
	require.Zero(t, s.Beeps(tricopter.BeepFail))
}

func TestAutotuneCanceled(t *testing.T) {
	s, err := New(DefaultConfig(), tricopter.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.RunAutotune(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestServoCalibration(t *testing.T) {
	store := &memStore{}
	mixCfg := tricopter.DefaultConfig()
	mixCfg.ServoFeedback = servo.FeedbackCurrent
	s, err := New(DefaultConfig(), mixCfg, store, nil)
	require.NoError(t, err)

	res, err := s.RunServoCalibration(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1048, res.MinADC, 2)
	require.InDelta(t, 2048, res.MidADC, 2)
	require.InDelta(t, 3048, res.MaxADC, 2)
	require.InDelta(t, 260, res.Speed, 8)
	require.Equal(t, 1, store.saved)
	require.Equal(t, res.Speed, store.cfg.TailServoSpeed)
	require.NoError(t, mixCfg.Validate())
	// the switch is off again and the result survives the reset
	require.Equal(t, tricopter.TailTuneNone, s.Mixer().TailTuneMode())
	require.False(t, s.Mixer().CalibDone())
	require.Zero(t, s.Beeps(tricopter.BeepFail))

	// feedback now tracks the real tail
	s.Run(time.Second)
	require.InDelta(t, s.TailAngle(), s.Mixer().CurrentServoAngle(), 2)
}

func TestServoCalibrationNeedsFeedback(t *testing.T) {
	s, err := New(DefaultConfig(), tricopter.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	_, err = s.RunServoCalibration(context.Background())
	require.Error(t, err)
}
