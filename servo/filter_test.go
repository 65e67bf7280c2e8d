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
	"time"

	"github.com/stretchr/testify/require"
)

func TestPT1Gain(t *testing.T) {
	require.InDelta(t, 0.30548, PT1Gain(FeedbackCutoffHz, time.Millisecond), 1e-5)
	require.InDelta(t, 0.03046, PT1Gain(MotorFeedbackCutoffHz, time.Millisecond), 1e-5)
	require.Equal(t, 1.0, PT1Gain(5, 0))
}

func TestPT1FilterStep(t *testing.T) {
	f := NewPT1Filter(MotorFeedbackCutoffHz, time.Millisecond)
	require.Equal(t, 0.0, f.Apply(0))

	var out float64
	// one time constant is ~31.8 ms
	for i := 0; i < 32; i++ {
		out = f.Apply(1000)
	}
	require.InDelta(t, 632, out, 15)
	for i := 0; i < 1000; i++ {
		out = f.Apply(1000)
	}
	require.InDelta(t, 1000, out, 0.01)
	require.Equal(t, out, f.Value())

	f.Reset(42)
	require.Equal(t, 42.0, f.Value())
}

func TestPT1FilterSeed(t *testing.T) {
	f := NewPT1Filter(FeedbackCutoffHz, time.Millisecond)
	require.Equal(t, 2048.0, f.Apply(2048))
	require.InDelta(t, 2048, f.Apply(2049), 1)
}
