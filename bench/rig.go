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

// Package bench talks to a servo test rig over a serial line. The rig
// drives the tail servo and streams its feedback ADC.
//
// Rig to host lines are "A <channel> <counts>", host to rig lines are "S <microseconds>".
package bench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/lkaino/cleanflight/servo"
)

// DefaultBaudRate of the rig firmware
const DefaultBaudRate = 115200

// ErrMalformed is returned for lines not following the rig protocol
var ErrMalformed = errors.New("malformed rig line")

// Rig represents the servo test rig
type Rig struct {
	port io.ReadWriteCloser

	mux     sync.Mutex
	samples map[servo.FeedbackSource]uint16
	lines   int64
	bad     int64
}

// Open opens the rig serial port
func Open(device string, baudRate int) (*Rig, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}
	return NewRig(port), nil
}

// NewRig creates a rig on an open port
func NewRig(port io.ReadWriteCloser) *Rig {
	return &Rig{
		port:    port,
		samples: map[servo.FeedbackSource]uint16{},
	}
}

// Close is to close serial port
func (r *Rig) Close() error {
	return r.port.Close()
}

// ParseLine parses one feedback line
func ParseLine(line string) (servo.FeedbackSource, uint16, error) {
	var name string
	var counts int
	n, err := fmt.Sscanf(strings.TrimSpace(line), "A %s %d", &name, &counts)
	if n != 2 || err != nil {
		return servo.FeedbackVirtual, 0, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	src, err := servo.FeedbackSourceFromString(name)
	if err != nil || src == servo.FeedbackVirtual {
		return servo.FeedbackVirtual, 0, fmt.Errorf("%w: bad channel %q", ErrMalformed, name)
	}
	if counts < 0 || counts > 4095 {
		return servo.FeedbackVirtual, 0, fmt.Errorf("%w: counts %d out of range", ErrMalformed, counts)
	}
	return src, uint16(counts), nil
}

// Run reads feedback lines until ctx is done or the port fails
func (r *Rig) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// unblocks the scanner
			r.port.Close()
		case <-done:
		}
	}()
	scanner := bufio.NewScanner(r.port)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		src, counts, err := ParseLine(line)
		r.mux.Lock()
		r.lines++
		if err != nil {
			r.bad++
		} else {
			r.samples[src] = counts
		}
		r.mux.Unlock()
		if err != nil {
			log.Debugf("skipping rig line: %v", err)
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading rig: %w", err)
	}
	return io.EOF
}

// Sample returns the latest feedback of the channel. It implements tricopter.ADC.
func (r *Rig) Sample(source servo.FeedbackSource) uint16 {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.samples[source]
}

// Stats returns how many lines were read and how many of them were malformed
func (r *Rig) Stats() (lines, bad int64) {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.lines, r.bad
}

// SetServo commands the servo
func (r *Rig) SetServo(value int16) error {
	_, err := fmt.Fprintf(r.port, "S %d\n", value)
	return err
}
