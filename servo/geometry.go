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
	"sort"
)

const (
	curveFirstAngle = AngleMid - MaxAngle
	curveStep       = 2 * MaxAngle / (CurveSize - 1)

	// keep this far above the angle where the pitch correction goes infinite
	singularityMargin = 100.0
)

// Geometry is the tail thrust/torque model for one thrust factor and deflection.
// It is immutable, a new one is built whenever the thrust factor changes.
type Geometry struct {
	thrustFactor  float64
	maxDeflection float64

	angleAtMin       float64
	angleAtMax       float64
	angleAtLinearMin float64
	angleAtLinearMax float64
	pitchZeroAngle   float64
	maxYawOutput     float64

	// yaw force at evenly spaced angles; angles outside the usable range
	// repeat the value at the nearest bound so the table never decreases
	curve       [CurveSize]float64
	curveAngles [CurveSize]float64
}

// DeciToRad converts decidegrees to radians
func DeciToRad(angle float64) float64 {
	return angle / 10 * math.Pi / 180
}

// RadToDeci converts radians to decidegrees
func RadToDeci(rad float64) float64 {
	return rad * 180 / math.Pi * 10
}

// PitchCorrection returns the thrust multiplier that keeps the vertical
// component of the tail thrust equal to the one straight back
func PitchCorrection(angle, thrustFactor float64) float64 {
	a := DeciToRad(angle)
	return 1 / (math.Sin(a) - math.Cos(a)/thrustFactor)
}

// PitchZeroAngle returns the tail angle at which the motor torque and the
// horizontal thrust component cancel out
func PitchZeroAngle(thrustFactor float64) float64 {
	tf := thrustFactor
	return RadToDeci(2 * math.Atan((math.Sqrt(tf*tf+1)+1)/tf))
}

func yawForce(angle, thrustFactor float64) float64 {
	a := DeciToRad(angle)
	return 1000 * (-thrustFactor*math.Cos(a) - math.Sin(a)) * PitchCorrection(angle, thrustFactor)
}

// NewGeometry builds the model. thrustFactor is the real value (not x10),
// maxDeflection is in decidegrees. Out of range input is clamped.
func NewGeometry(thrustFactor, maxDeflection float64) *Geometry {
	if maxDeflection <= 0 {
		maxDeflection = MaxAngle
	}
	g := &Geometry{
		thrustFactor:  Constrain(thrustFactor, ThrustFactorMin, ThrustFactorMax),
		maxDeflection: Constrain(maxDeflection, 1, MaxAngle),
	}
	tf := g.thrustFactor
	g.angleAtMin = AngleMid - g.maxDeflection
	g.angleAtMax = AngleMid + g.maxDeflection
	if low := RadToDeci(math.Atan(1/tf)) + singularityMargin; g.angleAtMin < low {
		g.angleAtMin = low
	}
	g.pitchZeroAngle = PitchZeroAngle(tf)

	for i := range g.curve {
		angle := Constrain(curveFirstAngle+float64(i)*curveStep, g.angleAtMin, g.angleAtMax)
		g.curveAngles[i] = angle
		g.curve[i] = yawForce(angle, tf)
	}

	// the curve increases with angle so the extremes are at the ends
	maxNeg := yawForce(g.angleAtMin, tf)
	maxPos := yawForce(g.angleAtMax, tf)
	g.maxYawOutput = math.Min(math.Abs(maxNeg), math.Abs(maxPos))
	g.angleAtLinearMin = g.AngleForYawOutput(-g.maxYawOutput)
	g.angleAtLinearMax = g.AngleForYawOutput(g.maxYawOutput)
	return g
}

// ThrustFactor returns the thrust factor the model was built for
func (g *Geometry) ThrustFactor() float64 { return g.thrustFactor }

// MaxDeflection returns max deflection from straight back
func (g *Geometry) MaxDeflection() float64 { return g.maxDeflection }

// AngleAtMin returns the lowest usable tail angle
func (g *Geometry) AngleAtMin() float64 { return g.angleAtMin }

// AngleAtMax returns the highest usable tail angle
func (g *Geometry) AngleAtMax() float64 { return g.angleAtMax }

// AngleAtLinearMin returns the angle giving -MaxYawOutput
func (g *Geometry) AngleAtLinearMin() float64 { return g.angleAtLinearMin }

// AngleAtLinearMax returns the angle giving MaxYawOutput
func (g *Geometry) AngleAtLinearMax() float64 { return g.angleAtLinearMax }

// PitchZeroAngle returns the tail angle producing no yaw force
func (g *Geometry) PitchZeroAngle() float64 { return g.pitchZeroAngle }

// MaxYawOutput returns the largest yaw force reachable in both directions
func (g *Geometry) MaxYawOutput() float64 { return g.maxYawOutput }

// Curve returns a copy of the yaw force table and the angle of each entry
func (g *Geometry) Curve() ([]float64, []float64) {
	force := make([]float64, CurveSize)
	angles := make([]float64, CurveSize)
	copy(force, g.curve[:])
	copy(angles, g.curveAngles[:])
	return force, angles
}

func curveIndex(angle float64) (int, float64) {
	pos := (angle - curveFirstAngle) / curveStep
	pos = Constrain(pos, 0, CurveSize-1)
	i := int(pos)
	if i >= CurveSize-1 {
		return CurveSize - 2, 1
	}
	return i, pos - float64(i)
}

// YawForceAt returns the tail yaw force at the angle, read from the table
func (g *Geometry) YawForceAt(angle float64) float64 {
	i, frac := curveIndex(angle)
	return g.curve[i] + (g.curve[i+1]-g.curve[i])*frac
}

// AngleForYawOutput returns the tail angle producing the requested yaw force
func (g *Geometry) AngleForYawOutput(yawOutput float64) float64 {
	i := sort.SearchFloat64s(g.curve[:], yawOutput)
	switch {
	case i == 0:
		return g.angleAtMin
	case i >= CurveSize:
		return g.angleAtMax
	}
	lower, higher := g.curve[i-1], g.curve[i]
	if higher == lower {
		return g.curveAngles[i]
	}
	angle := g.curveAngles[i-1] + (yawOutput-lower)*(g.curveAngles[i]-g.curveAngles[i-1])/(higher-lower)
	return Constrain(angle, g.angleAtMin, g.angleAtMax)
}

// Clamp limits the angle to the usable range
func (g *Geometry) Clamp(angle float64) float64 {
	return Constrain(angle, g.angleAtMin, g.angleAtMax)
}

// AngleFromADC converts raw feedback to tail angle using calibrated
// feedback at min, mid and max. Reversed wiring (min > max) is supported,
// values past the calibrated ends are clamped.
func (g *Geometry) AngleFromADC(raw, minADC, midADC, maxADC float64) float64 {
	end, endAngle := maxADC, AngleMid+g.maxDeflection
	if (raw-midADC)*(minADC-midADC) > 0 {
		end, endAngle = minADC, AngleMid-g.maxDeflection
	}
	if end == midADC {
		return g.Clamp(AngleMid)
	}
	angle := AngleMid + (endAngle-AngleMid)*(raw-midADC)/(end-midADC)
	return g.Clamp(angle)
}

// ServoValueAtAngle returns the servo command for the tail angle
func (g *Geometry) ServoValueAtAngle(p Params, angle float64) float64 {
	angle = g.Clamp(angle)
	if p.Rate < 0 {
		angle = 2*AngleMid - angle
	}
	lo, hi := AngleMid-g.maxDeflection, AngleMid+g.maxDeflection
	minV, midV, maxV := float64(p.Min), float64(p.Middle), float64(p.Max)
	var value float64
	switch {
	case angle < AngleMid:
		value = minV + (angle-lo)*(midV-minV)/(AngleMid-lo)
	case angle > AngleMid:
		value = midV + (angle-AngleMid)*(maxV-midV)/(hi-AngleMid)
	default:
		value = midV
	}
	return Constrain(value, math.Min(minV, maxV), math.Max(minV, maxV))
}

// AngleAtServoValue returns the tail angle the servo settles at for the command
func (g *Geometry) AngleAtServoValue(p Params, value float64) float64 {
	lo, hi := AngleMid-g.maxDeflection, AngleMid+g.maxDeflection
	minV, midV, maxV := float64(p.Min), float64(p.Middle), float64(p.Max)
	angle := AngleMid
	switch {
	case value < midV && midV != minV:
		angle = AngleMid - (midV-value)*(AngleMid-lo)/(midV-minV)
	case value > midV && maxV != midV:
		angle = AngleMid + (value-midV)*(hi-AngleMid)/(maxV-midV)
	}
	if p.Rate < 0 {
		angle = 2*AngleMid - angle
	}
	return g.Clamp(angle)
}
