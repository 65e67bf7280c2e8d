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

// Package telemetry publishes tail mixer snapshots over MQTT
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/lkaino/cleanflight/tricopter"
)

// Config of the MQTT publisher
type Config struct {
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	QoS      byte          `yaml:"qos"`
	Retained bool          `yaml:"retained"`
	Interval time.Duration `yaml:"interval"` // minimum time between snapshots
	Timeout  time.Duration `yaml:"timeout"`  // how long to wait for the broker
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		Broker:   "tcp://localhost:1883",
		ClientID: "trictl",
		Topic:    "tricopter/tail",
		Interval: 100 * time.Millisecond,
		Timeout:  2 * time.Second,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.Broker == "" || c.Topic == "" {
		return fmt.Errorf("broker and topic must be set")
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}
	return nil
}

// Connect connects to the broker
func Connect(c Config) (mqtt.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetConnectTimeout(c.Timeout)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(c.Timeout) && token.Error() != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.Broker, token.Error())
	} else if !client.IsConnected() {
		return nil, fmt.Errorf("connecting to %s: timed out", c.Broker)
	}
	log.Infof("connected to MQTT broker %s", c.Broker)
	return client, nil
}

// Publisher is what Reporter needs from an MQTT client
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Reporter publishes snapshots no more often than the configured interval
type Reporter struct {
	pub  Publisher
	cfg  Config
	last time.Time
	sent int64
}

// NewReporter creates a Reporter
func NewReporter(pub Publisher, cfg Config) *Reporter {
	return &Reporter{pub: pub, cfg: cfg}
}

// Sent returns the number of published snapshots
func (r *Reporter) Sent() int64 { return r.sent }

// Report publishes the snapshot taken at now unless one was published
// less than an interval ago
func (r *Reporter) Report(now time.Time, snap tricopter.Snapshot) error {
	if !r.last.IsZero() && now.Sub(r.last) < r.cfg.Interval {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	token := r.pub.Publish(r.cfg.Topic, r.cfg.QoS, r.cfg.Retained, payload)
	if !token.WaitTimeout(r.cfg.Timeout) {
		return fmt.Errorf("publishing to %s: timed out", r.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", r.cfg.Topic, err)
	}
	r.last = now
	r.sent++
	return nil
}
