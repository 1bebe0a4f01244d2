// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package ota implements the firmware-update driver: the staged FC0-FC7
// request/response state machine that negotiates chunk size, streams a
// firmware image, verifies it, and activates it (§4.7).
package ota

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/scattym/go-meitrack/command"
	"github.com/scattym/go-meitrack/wire"
)

// DefaultTimeout is the default outstanding-request deadline (§4.7, §6).
const DefaultTimeout = 30 * time.Second

// State is one stage of a firmware-update session.
type State int

const (
	Idle State = iota
	Stage1Running
	Stage1Complete
	WaitReconnect
	Stage2Running
	Uploading
	Verifying
	Activating
	FinishedSuccess
	FinishedError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Stage1Running:
		return "Stage1Running"
	case Stage1Complete:
		return "Stage1Complete"
	case WaitReconnect:
		return "WaitReconnect"
	case Stage2Running:
		return "Stage2Running"
	case Uploading:
		return "Uploading"
	case Verifying:
		return "Verifying"
	case Activating:
		return "Activating"
	case FinishedSuccess:
		return "Finished{Success}"
	case FinishedError:
		return "Finished{Error}"
	default:
		return "unknown"
	}
}

// Error kinds specific to the OTA driver (§4.7, §7).
var (
	ErrDeviceCodeMismatch = errors.New("meitrack: ota error: device code mismatch")
	ErrNack               = errors.New("meitrack: ota error: nack")
	ErrTimeout            = errors.New("meitrack: ota error: timeout")
	ErrFileNameMismatch   = errors.New("meitrack: ota error: file name mismatch")
)

// stage1 steps, in dispatch order.
const (
	step5FC5 = iota
	step6FC6
	step7FC7
	step4FC0
)

// pending is the single outstanding non-FC1 request the driver is
// waiting on a response for. FC1 chunks never occupy this slot: they are
// fire-and-forget (§4.7).
type pending struct {
	typ    command.Type
	sentAt time.Time
}

// Driver drives one device through a full OTA update. It never performs
// I/O itself: Next returns the command (and the identifier to frame it
// under) the caller should send, and Accept/CheckTimeout are driven by
// the caller's event loop from incoming frames and a clock tick.
type Driver struct {
	ExpectedDeviceCode string
	OTAHost            string
	OTAPort            string
	FileName           string
	FileBytes          []byte
	Timeout            time.Duration
	MaxRetries         int

	state      State
	stage1At   int
	current    *pending
	chunkSize  int
	nextChunk  int
	totalChunk int
	retries    int
	counter    int
	err        error
}

// New constructs a Driver ready to Start. Timeout defaults to
// DefaultTimeout when zero.
func New(expectedDeviceCode, otaHost, otaPort, fileName string, fileBytes []byte) *Driver {
	return &Driver{
		ExpectedDeviceCode: expectedDeviceCode,
		OTAHost:            otaHost,
		OTAPort:            otaPort,
		FileName:           fileName,
		FileBytes:          fileBytes,
		Timeout:            DefaultTimeout,
	}
}

// State reports the driver's current stage.
func (d *Driver) State() State { return d.state }

// IsFinished reports whether the session has reached a terminal state.
func (d *Driver) IsFinished() bool {
	return d.state == FinishedSuccess || d.state == FinishedError
}

// IsError reports whether the session finished with an error.
func (d *Driver) IsError() bool { return d.state == FinishedError }

// Err returns the error that finished the session, if any.
func (d *Driver) Err() error { return d.err }

// Start begins stage 1.
func (d *Driver) Start() {
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
	d.state = Stage1Running
	d.stage1At = step5FC5
}

func (d *Driver) identifier() byte {
	id := wire.IdentifierAt(d.counter)
	d.counter++
	return id
}

// dispatch builds a fresh zero-value command of typ, occupies the
// blocking current-request slot, and returns it with a freshly cycled
// identifier.
func (d *Driver) dispatch(now time.Time, typ command.Type) (*command.Command, byte, bool) {
	cmd, ok := command.New(wire.ServerToClient, typ)
	if !ok {
		return nil, 0, false
	}
	id := d.identifier()
	d.current = &pending{typ: typ, sentAt: now}
	return cmd, id, true
}

func (d *Driver) chunkCommand(index int) *command.Command {
	start := index * d.chunkSize
	length := d.chunkSize
	if start+length > len(d.FileBytes) {
		length = len(d.FileBytes) - start
	}
	header := make([]byte, 6, 6+length)
	binary.BigEndian.PutUint32(header[0:4], uint32(start))
	binary.BigEndian.PutUint16(header[4:6], uint16(length))
	payload := append(header, d.FileBytes[start:start+length]...)

	cmd, _ := command.New(wire.ServerToClient, command.FC1)
	cmd.Set("payload", payload)
	return cmd
}

// ReconnectedForStage2 signals that the device has disconnected and
// reconnected after a successful first FC0, advancing the driver from
// WaitReconnect to Stage2Running so Next will re-issue FC0.
func (d *Driver) ReconnectedForStage2() {
	if d.state == WaitReconnect {
		d.state = Stage2Running
	}
}

// Next returns the next command to send and the identifier to frame it
// under, iff the driver has work to do and no blocking request is
// currently outstanding. FC1 chunks are the exception: they never
// occupy the blocking slot, so a whole burst can be drained by repeated
// Next calls with no intervening Accept. ok is false when there is
// nothing to send right now (waiting on a response, waiting on a
// reconnect, or finished).
func (d *Driver) Next(now time.Time) (cmd *command.Command, identifier byte, ok bool) {
	if d.IsFinished() || d.current != nil {
		return nil, 0, false
	}

	switch d.state {
	case Stage1Running:
		switch d.stage1At {
		case step5FC5:
			return d.dispatch(now, command.FC5)
		case step6FC6:
			cmd, id, ok := d.dispatch(now, command.FC6)
			if ok {
				cmd.Set("file_name", []byte(d.FileName))
			}
			return cmd, id, ok
		case step7FC7:
			cmd, id, ok := d.dispatch(now, command.FC7)
			if ok {
				cmd.Set("ip_address", []byte(d.OTAHost))
				cmd.Set("port", []byte(d.OTAPort))
			}
			return cmd, id, ok
		case step4FC0:
			cmd, id, ok := d.dispatch(now, command.FC0)
			if ok {
				cmd.Set("action", []byte("AUTH"))
			}
			return cmd, id, ok
		}
		return nil, 0, false

	case Stage1Complete:
		// Nothing to send: waiting for the device to disconnect and
		// reconnect before stage 2 can begin (§4.7).
		d.state = WaitReconnect
		return nil, 0, false

	case Stage2Running:
		cmd, id, ok := d.dispatch(now, command.FC0)
		if ok {
			cmd.Set("action", []byte("AUTH"))
		}
		return cmd, id, ok

	case Uploading:
		if d.nextChunk < d.totalChunk {
			chunk := d.chunkCommand(d.nextChunk)
			d.nextChunk++
			return chunk, d.identifier(), true
		}
		// Every FC1 chunk has been dispatched: only now may FC2 go out.
		d.state = Verifying
		cmd, id, ok := d.dispatch(now, command.FC2)
		if ok {
			cmd.Set("index_length", []byte(strconv.Itoa(len(d.FileBytes))))
		}
		return cmd, id, ok

	case Verifying:
		// No request outstanding here means CheckTimeout re-armed the FC2
		// step: resend it.
		cmd, id, ok := d.dispatch(now, command.FC2)
		if ok {
			cmd.Set("index_length", []byte(strconv.Itoa(len(d.FileBytes))))
		}
		return cmd, id, ok

	case Activating:
		return d.dispatch(now, command.FC3)

	default:
		return nil, 0, false
	}
}

// Accept feeds a response frame's command into the driver. It is a no-op
// if the response's type does not match the currently outstanding
// request (a stray or duplicate frame).
func (d *Driver) Accept(resp *command.Command) error {
	if d.current == nil || resp.Type != d.current.typ {
		return nil
	}
	d.current = nil
	d.retries = 0

	switch resp.Type {
	case command.FC5:
		code, _ := resp.Get("device_code")
		if string(code) != d.ExpectedDeviceCode {
			return d.fail(fmt.Errorf("%w: device reported %q, expected %q", ErrDeviceCodeMismatch, code, d.ExpectedDeviceCode))
		}
		d.stage1At = step6FC6
		return nil

	case command.FC6:
		v, _ := resp.Get("response")
		if string(v) != "ACK" {
			return d.fail(fmt.Errorf("%w: FC6 file-name check returned %q", ErrNack, v))
		}
		d.stage1At = step7FC7
		return nil

	case command.FC7:
		if resp.IsResponseError() {
			v, _ := resp.Get("response")
			return d.fail(fmt.Errorf("%w: FC7 host-set returned %q", ErrNack, v))
		}
		d.stage1At = step4FC0
		return nil

	case command.FC0:
		v, _ := resp.Get("response")
		if string(v) != "OK" {
			return d.fail(fmt.Errorf("%w: FC0 returned %q", ErrNack, v))
		}
		if d.state == Stage1Running {
			size, _ := resp.Get("packet_size")
			n, err := strconv.Atoi(string(size))
			if err != nil || n <= 0 {
				return d.fail(fmt.Errorf("%w: FC0 reported invalid packet_size %q", ErrNack, size))
			}
			d.chunkSize = n
			d.state = Stage1Complete
			return nil
		}
		// Stage 2: verify the device is still reporting the file this session targets.
		fileName, _ := resp.Get("ota_file_name")
		if string(fileName) != d.FileName {
			return d.fail(fmt.Errorf("%w: device reports %q, expected %q", ErrFileNameMismatch, fileName, d.FileName))
		}
		d.totalChunk = (len(d.FileBytes) + d.chunkSize - 1) / d.chunkSize
		d.nextChunk = 0
		d.state = Uploading
		return nil

	case command.FC2:
		if resp.IsResponseError() {
			v, _ := resp.Get("response")
			return d.fail(fmt.Errorf("%w: FC2 checksum check returned %q", ErrNack, v))
		}
		want := wire.Checksum(d.FileBytes)
		got, _ := resp.Get("ota_checksum")
		if string(got) != want {
			return d.fail(fmt.Errorf("%w: FC2 checksum mismatch: computed %s, device reports %s", ErrNack, want, got))
		}
		d.state = Activating
		return nil

	case command.FC3:
		v, _ := resp.Get("response")
		if string(v) != "1" {
			return d.fail(fmt.Errorf("%w: FC3 start-update returned %q", ErrNack, v))
		}
		d.state = FinishedSuccess
		return nil

	case command.FC4:
		// Best-effort cancel ack; nothing further to do.
		return nil

	default:
		return nil
	}
}

// CheckTimeout marks the outstanding request timed out if it has been
// pending longer than Timeout, returning true if it took action. Within
// MaxRetries the same step is simply re-armed for Next to resend with a
// fresh identifier; once retries are exhausted the session fails with
// ErrTimeout and the caller must send CancelFrame.
func (d *Driver) CheckTimeout(now time.Time) bool {
	if d.current == nil || now.Sub(d.current.sentAt) < d.Timeout {
		return false
	}
	if d.retries < d.MaxRetries {
		d.retries++
		d.current = nil
		return true
	}
	typ := d.current.typ
	d.current = nil
	d.fail(fmt.Errorf("%w: %s timed out after %s", ErrTimeout, typ, d.Timeout))
	return true
}

// fail transitions the driver to Finished{Error} and records err.
func (d *Driver) fail(err error) error {
	d.state = FinishedError
	d.err = err
	return err
}

// CancelFrame builds the best-effort FC4 cancel request mandated on any
// error (§4.7). Meaningful to call once, immediately after the driver
// transitions to Finished{Error}.
func (d *Driver) CancelFrame() (cmd *command.Command, identifier byte) {
	cmd, _ = command.New(wire.ServerToClient, command.FC4)
	return cmd, d.identifier()
}
