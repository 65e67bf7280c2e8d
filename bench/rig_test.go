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

package bench

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lkaino/cleanflight/servo"
	"github.com/lkaino/cleanflight/tricopter"
)

type fakePort struct {
	r       io.Reader
	mux     sync.Mutex
	written bytes.Buffer
	closed  bool
	closes  int
}

func (p *fakePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.closed = true
	p.closes++
	return nil
}

func TestParseLine(t *testing.T) {
	src, counts, err := ParseLine("A current 2048\r\n")
	require.NoError(t, err)
	require.Equal(t, servo.FeedbackCurrent, src)
	require.Equal(t, uint16(2048), counts)

	src, counts, err = ParseLine("A RSSI 0")
	require.NoError(t, err)
	require.Equal(t, servo.FeedbackRSSI, src)
	require.Zero(t, counts)

	for _, line := range []string{"", "A", "A current", "S 1500", "A virtual 10", "A foo 10", "A ext1 4096", "A ext1 -1", "A ext1 x"} {
		_, _, err := ParseLine(line)
		require.ErrorIs(t, err, ErrMalformed, line)
	}
}

func TestRigRun(t *testing.T) {
	port := &fakePort{r: strings.NewReader("A current 2048\nA rssi 100\n\ngarbage\nA ext1 5000\nA current 2050\n")}
	rig := NewRig(port)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := rig.Run(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, uint16(2050), rig.Sample(servo.FeedbackCurrent))
	require.Equal(t, uint16(100), rig.Sample(servo.FeedbackRSSI))
	require.Zero(t, rig.Sample(servo.FeedbackExt1))
	lines, bad := rig.Stats()
	require.Equal(t, int64(5), lines)
	require.Equal(t, int64(2), bad)

	require.NoError(t, rig.SetServo(1500))
	require.NoError(t, rig.SetServo(-1))
	require.Equal(t, "S 1500\nS -1\n", port.written.String())

	// the port belongs to the caller once Run has returned
	cancel()
	require.Never(t, func() bool {
		port.mux.Lock()
		defer port.mux.Unlock()
		return port.closed
	}, 50*time.Millisecond, time.Millisecond)
	require.NoError(t, rig.Close())
	require.Equal(t, 1, port.closes)
}

func TestRigRunCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	port := &fakePort{r: pr}
	rig := NewRig(port)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- rig.Run(ctx)
	}()
	_, err := pw.Write([]byte("A ext1 1234\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return rig.Sample(servo.FeedbackExt1) == 1234
	}, time.Second, time.Millisecond)

	cancel()
	// closing the port ends the read
	require.Eventually(t, func() bool {
		port.mux.Lock()
		defer port.mux.Unlock()
		return port.closed
	}, time.Second, time.Millisecond)
	pw.Close()
	require.NoError(t, <-done)
}

// rigServo is a fast servo whose feedback spans 1000 to 3000 counts
type rigServo struct {
	mux    sync.Mutex
	target float64
	pos    float64
	step   float64
}

func (s *rigServo) SetServo(value int16) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.target = float64(value)
	return nil
}

func (s *rigServo) Sample(servo.FeedbackSource) uint16 {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.target-s.pos > s.step {
		s.pos += s.step
	} else if s.pos-s.target > s.step {
		s.pos -= s.step
	} else {
		s.pos = s.target
	}
	return uint16(2000 + 2*(s.pos-1500))
}

func TestCalibrate(t *testing.T) {
	cfg := tricopter.DefaultConfig()
	cfg.ServoFeedback = servo.FeedbackExt1
	cfg.ServoCalib = tricopter.ServoCalibConfig{
		StopTolerance: 10,
		StopTime:      20 * time.Millisecond,
		AverageWindow: 10 * time.Millisecond,
		Timeout:       2 * time.Second,
		SpeedSamples:  1,
	}
	params := servo.DefaultParams()
	s := &rigServo{pos: 1500, target: 1500, step: 20}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, Calibrate(ctx, s, s, cfg, &params, nil))
	require.Equal(t, uint16(1000), cfg.ServoMinADC)
	require.Equal(t, uint16(2000), cfg.ServoMidADC)
	require.Equal(t, uint16(3000), cfg.ServoMaxADC)
	require.Greater(t, cfg.TailServoSpeed, int16(0))
}

func TestCalibrateNeedsFeedback(t *testing.T) {
	cfg := tricopter.DefaultConfig()
	params := servo.DefaultParams()
	s := &rigServo{}
	require.Error(t, Calibrate(context.Background(), s, s, cfg, &params, nil))
}
