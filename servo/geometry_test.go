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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPitchZeroAngle(t *testing.T) {
	require.InDelta(t, 941.446, PitchZeroAngle(13.8), 0.01)
	// yaw force vanishes at the pitch zero angle
	require.InDelta(t, 0, yawForce(PitchZeroAngle(13.8), 13.8), 1e-6)
	require.InDelta(t, 1.0, PitchCorrection(AngleMid, 13.8), 1e-9)
}

func TestNewGeometry(t *testing.T) {
	g := NewGeometry(13.8, MaxAngle)
	require.Equal(t, 400.0, g.AngleAtMin())
	require.Equal(t, 1400.0, g.AngleAtMax())
	require.InDelta(t, 941.446, g.PitchZeroAngle(), 0.01)
	// positive side is the weaker one
	require.InDelta(t, 14218.32, g.MaxYawOutput(), 0.01)
	require.InDelta(t, 1400.0, g.AngleAtLinearMax(), 0.01)

	require.Less(t, g.AngleAtMin(), g.AngleAtLinearMin())
	require.LessOrEqual(t, g.AngleAtLinearMin(), g.PitchZeroAngle())
	require.LessOrEqual(t, g.PitchZeroAngle(), g.AngleAtLinearMax())
	require.LessOrEqual(t, g.AngleAtLinearMax(), g.AngleAtMax())
}

func TestNewGeometryClamps(t *testing.T) {
	g := NewGeometry(100, -5)
	require.Equal(t, ThrustFactorMax, g.ThrustFactor())
	require.Equal(t, MaxAngle, g.MaxDeflection())

	// tiny thrust factor moves the lower bound away from the singularity
	g = NewGeometry(0.1, MaxAngle)
	require.Equal(t, ThrustFactorMin, g.ThrustFactor())
	require.InDelta(t, 550.0, g.AngleAtMin(), 1e-9)
}

func TestCurveMonotonic(t *testing.T) {
	for _, tf := range []float64{1, 2.5, 13.8, 40} {
		g := NewGeometry(tf, MaxAngle)
		force, angles := g.Curve()
		require.Len(t, force, CurveSize)
		for i := 1; i < CurveSize; i++ {
			require.GreaterOrEqual(t, force[i], force[i-1], "thrust factor %v index %d", tf, i)
			require.GreaterOrEqual(t, angles[i], angles[i-1])
		}
	}
}

func TestAngleForYawOutput(t *testing.T) {
	g := NewGeometry(13.8, MaxAngle)
	require.InDelta(t, g.PitchZeroAngle(), g.AngleForYawOutput(0), 1.0)
	require.Equal(t, g.AngleAtMin(), g.AngleForYawOutput(-1e9))
	require.Equal(t, g.AngleAtMax(), g.AngleForYawOutput(1e9))

	prev := g.AngleAtMin()
	for y := -g.MaxYawOutput(); y <= g.MaxYawOutput(); y += 100 {
		a := g.AngleForYawOutput(y)
		require.GreaterOrEqual(t, a, prev)
		require.InDelta(t, y, g.YawForceAt(a), 50)
		prev = a
	}
}

func TestAngleFromADC(t *testing.T) {
	g := NewGeometry(13.8, MaxAngle)
	require.Equal(t, AngleMid, g.AngleFromADC(2000, 1000, 2000, 3000))
	require.Equal(t, 400.0, g.AngleFromADC(1000, 1000, 2000, 3000))
	require.Equal(t, 1400.0, g.AngleFromADC(3000, 1000, 2000, 3000))
	require.Equal(t, 650.0, g.AngleFromADC(1500, 1000, 2000, 3000))
	// clamped, not extrapolated
	require.Equal(t, 400.0, g.AngleFromADC(0, 1000, 2000, 3000))
	require.Equal(t, 1400.0, g.AngleFromADC(4095, 1000, 2000, 3000))
	// asymmetric spans
	require.Equal(t, 1150.0, g.AngleFromADC(2100, 1000, 2000, 2200))

	prev := g.AngleAtMin()
	for raw := 0.0; raw <= 4095; raw++ {
		a := g.AngleFromADC(raw, 1000, 2000, 3000)
		require.GreaterOrEqual(t, a, prev)
		require.GreaterOrEqual(t, a, g.AngleAtMin())
		require.LessOrEqual(t, a, g.AngleAtMax())
		prev = a
	}
}

func TestAngleFromADCReversedAndBroken(t *testing.T) {
	g := NewGeometry(13.8, MaxAngle)
	// feedback wired the other way around
	require.Equal(t, 400.0, g.AngleFromADC(3000, 3000, 2000, 1000))
	require.Equal(t, 1400.0, g.AngleFromADC(1000, 3000, 2000, 1000))
	require.Equal(t, 650.0, g.AngleFromADC(2500, 3000, 2000, 1000))
	// all ends equal: no division by zero
	require.Equal(t, AngleMid, g.AngleFromADC(1234, 2000, 2000, 2000))
}

func TestServoValueAtAngle(t *testing.T) {
	g := NewGeometry(13.8, MaxAngle)
	p := DefaultParams()
	require.Equal(t, 1500.0, g.ServoValueAtAngle(p, AngleMid))
	require.Equal(t, 1000.0, g.ServoValueAtAngle(p, 400))
	require.Equal(t, 2000.0, g.ServoValueAtAngle(p, 1400))
	require.Equal(t, 2000.0, g.ServoValueAtAngle(p, 3000))
	require.Equal(t, 1250.0, g.ServoValueAtAngle(p, 650))

	for angle := 400.0; angle <= 1400; angle += 7 {
		require.InDelta(t, angle, g.AngleAtServoValue(p, g.ServoValueAtAngle(p, angle)), 1e-9)
	}

	p.Rate = -100
	require.Equal(t, 2000.0, g.ServoValueAtAngle(p, 400))
	require.Equal(t, 1000.0, g.ServoValueAtAngle(p, 1400))
	require.InDelta(t, 650.0, g.AngleAtServoValue(p, 1750), 1e-9)
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	require.Equal(t, MaxAngle, p.MaxDeflection())

	p.Rate = -40
	require.Equal(t, 200.0, p.MaxDeflection())

	p.Rate = 0
	require.Error(t, p.Validate())
	p.Rate = 100
	p.Middle = 900
	require.Error(t, p.Validate())
	p.Middle = 1500
	p.Max = 2100
	require.Error(t, p.Validate())
}

func TestFeedbackSource(t *testing.T) {
	s, err := FeedbackSourceFromString("EXT1")
	require.NoError(t, err)
	require.Equal(t, FeedbackExt1, s)
	require.Equal(t, "ext1", s.String())
	_, err = FeedbackSourceFromString("gps")
	require.Error(t, err)
	require.Equal(t, "UNSUPPORTED", FeedbackSource(42).String())
}

func TestConstrain(t *testing.T) {
	require.Equal(t, 5, Constrain(10, 0, 5))
	require.Equal(t, int16(-3), Constrain(int16(-7), -3, 3))
	require.Equal(t, 1.5, Constrain(1.5, 0, 2))
}
