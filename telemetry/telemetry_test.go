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

package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/lkaino/cleanflight/tricopter"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	c := make(chan struct{})
	if !t.timeout {
		close(c)
	}
	return c
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	token    *fakeToken
	messages []message
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.messages = append(p.messages, message{topic, qos, retained, payload.([]byte)})
	return p.token
}

func TestReporter(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{}}
	cfg := DefaultConfig()
	cfg.QoS = 1
	cfg.Retained = true
	r := NewReporter(pub, cfg)

	start := time.Unix(1700000000, 0)
	snap := tricopter.Snapshot{Angle: 941.5, Output: 1541, TailTuneMode: "NONE"}
	require.NoError(t, r.Report(start, snap))
	require.NoError(t, r.Report(start.Add(50*time.Millisecond), snap))
	require.NoError(t, r.Report(start.Add(100*time.Millisecond), snap))
	require.Equal(t, int64(2), r.Sent())
	require.Len(t, pub.messages, 2)

	m := pub.messages[0]
	require.Equal(t, "tricopter/tail", m.topic)
	require.Equal(t, byte(1), m.qos)
	require.True(t, m.retained)
	var got tricopter.Snapshot
	require.NoError(t, json.Unmarshal(m.payload, &got))
	require.Equal(t, snap, got)
}

func TestReporterErrors(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{err: errors.New("broker gone")}}
	r := NewReporter(pub, DefaultConfig())
	now := time.Unix(1700000000, 0)
	require.ErrorContains(t, r.Report(now, tricopter.Snapshot{}), "broker gone")
	require.Zero(t, r.Sent())

	pub.token = &fakeToken{timeout: true}
	require.ErrorContains(t, r.Report(now, tricopter.Snapshot{}), "timed out")

	// failed reports don't hold back the next one
	pub.token = &fakeToken{}
	require.NoError(t, r.Report(now, tricopter.Snapshot{}))
	require.Equal(t, int64(1), r.Sent())
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	c.QoS = 3
	require.Error(t, c.Validate())
	c = DefaultConfig()
	c.Topic = ""
	require.Error(t, c.Validate())
	_, err := Connect(c)
	require.Error(t, err)
}
