// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package builder provides validated constructors for outbound,
// server-to-client request frames (§10.5): thin wrappers around
// command.New/Set/frame.Encode that reject out-of-range arguments before
// a frame is ever assembled.
package builder

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/scattym/go-meitrack/command"
	"github.com/scattym/go-meitrack/frame"
	"github.com/scattym/go-meitrack/ota"
	"github.com/scattym/go-meitrack/wire"
)

// ErrOutOfRange is returned, with no frame, when a builder argument falls
// outside its documented domain (§4.3.2, §7 BuildError/OutOfRange).
var ErrOutOfRange = errors.New("meitrack: build error: value out of range")

func outOfRange(field string, value interface{}) error {
	return fmt.Errorf("%w: %s=%v", ErrOutOfRange, field, value)
}

func typed(typ command.Type) *command.Command {
	cmd, ok := command.New(wire.ServerToClient, typ)
	if !ok {
		panic("builder: " + string(typ) + " has no request schema")
	}
	return cmd
}

func build(typ command.Type, identifier byte, imei []byte, set func(cmd *command.Command)) []byte {
	cmd := typed(typ)
	set(cmd)
	return frame.Encode(wire.ServerToClient, identifier, imei, cmd)
}

// LocationQuery builds an A10 real-time location query.
func LocationQuery(identifier byte, imei []byte) []byte {
	return build(command.A10, identifier, imei, func(*command.Command) {})
}

// Heartbeat builds an A11 heartbeat-interval request. minutes must be in
// [0, 65535].
func Heartbeat(identifier byte, imei []byte, minutes int) ([]byte, error) {
	if minutes < 0 || minutes > 65535 {
		return nil, outOfRange("minutes", minutes)
	}
	return build(command.A11, identifier, imei, func(cmd *command.Command) {
		cmd.Set("value", []byte(strconv.Itoa(minutes)))
	}), nil
}

// TrackByTimeInterval builds an A12 tracking-by-time-interval request.
// deciseconds must be in [0, 65535].
func TrackByTimeInterval(identifier byte, imei []byte, deciseconds int) ([]byte, error) {
	if deciseconds < 0 || deciseconds > 65535 {
		return nil, outOfRange("deciseconds", deciseconds)
	}
	return build(command.A12, identifier, imei, func(cmd *command.Command) {
		cmd.Set("value", []byte(strconv.Itoa(deciseconds)))
	}), nil
}

// CorneringAngle builds an A13 cornering-report-angle request. degrees
// must be in [0, 359].
func CorneringAngle(identifier byte, imei []byte, degrees int) ([]byte, error) {
	if degrees < 0 || degrees > 359 {
		return nil, outOfRange("degrees", degrees)
	}
	return build(command.A13, identifier, imei, func(cmd *command.Command) {
		cmd.Set("angle", []byte(strconv.Itoa(degrees)))
	}), nil
}

// TrackByDistance builds an A14 tracking-by-distance request. meters must
// be in [0, 65535].
func TrackByDistance(identifier byte, imei []byte, meters int) ([]byte, error) {
	if meters < 0 || meters > 65535 {
		return nil, outOfRange("meters", meters)
	}
	return build(command.A14, identifier, imei, func(cmd *command.Command) {
		cmd.Set("value", []byte(strconv.Itoa(meters)))
	}), nil
}

// PinState is a single output line's tri-state value for SetOutputPin:
// Off, On, or Unchanged (§4.3.2).
type PinState int

const (
	PinOff PinState = iota
	PinOn
	PinUnchanged
)

func (s PinState) valid() bool { return s == PinOff || s == PinOn || s == PinUnchanged }

// SetOutputPin builds a C01 output-pin-control request. speed selects the
// control channel and must be 1 or 2; pins holds exactly five tri-state
// values (lines a..e), each 0 (off), 1 (on), or 2 (unchanged). Any
// violation returns ErrOutOfRange and no frame (§4.3.2, §8 scenario 2).
func SetOutputPin(identifier byte, imei []byte, speed int, pins [5]PinState) ([]byte, error) {
	if speed != 1 && speed != 2 {
		return nil, outOfRange("speed", speed)
	}
	bitmap := make([]byte, 5)
	for i, p := range pins {
		if !p.valid() {
			return nil, outOfRange(fmt.Sprintf("pins[%d]", i), int(p))
		}
		bitmap[i] = byte('0' + p)
	}
	return build(command.C01, identifier, imei, func(cmd *command.Command) {
		cmd.Set("speed", []byte(strconv.Itoa(speed)))
		cmd.Set("pin_bitmap", bitmap)
	}), nil
}

// DeviceInfoQuery builds an E91 firmware-version/serial-number query.
func DeviceInfoQuery(identifier byte, imei []byte) []byte {
	return build(command.E91, identifier, imei, func(*command.Command) {})
}

// FileDownloadRequest builds a D00 file-chunk request starting at
// startPacket.
func FileDownloadRequest(identifier byte, imei []byte, fileName string, startPacket int) ([]byte, error) {
	if startPacket < 0 {
		return nil, outOfRange("startPacket", startPacket)
	}
	return build(command.D00, identifier, imei, func(cmd *command.Command) {
		cmd.Set("file_name", []byte(fileName))
		cmd.Set("data_packet_start_number", []byte(strconv.Itoa(startPacket)))
	}), nil
}

// PhotoRequest is FileDownloadRequest specialized to the device's fixed
// snapshot file name, a convenience builder over D00 rather than a
// distinct command type.
func PhotoRequest(identifier byte, imei []byte, startPacket int) ([]byte, error) {
	return FileDownloadRequest(identifier, imei, "photo.jpg", startPacket)
}

// FileListRequest builds a D01 file-list request starting at startPacket.
func FileListRequest(identifier byte, imei []byte, startPacket int) ([]byte, error) {
	if startPacket < 0 {
		return nil, outOfRange("startPacket", startPacket)
	}
	return build(command.D01, identifier, imei, func(cmd *command.Command) {
		cmd.Set("data_packet_start_number", []byte(strconv.Itoa(startPacket)))
	}), nil
}

// DeleteRemoteFiles builds a D02 request deleting the pipe-joined list of
// remote files.
func DeleteRemoteFiles(identifier byte, imei []byte, fileNames []string) []byte {
	joined := ""
	for i, f := range fileNames {
		if i > 0 {
			joined += "|"
		}
		joined += f
	}
	return build(command.D02, identifier, imei, func(cmd *command.Command) {
		cmd.Set("file_names", []byte(joined))
	})
}

// AlertThresholds builds a raw B34 idle/fatigue alert-threshold request.
// This command type has no typed schema (§9 "dynamically typed
// payloads" only covers AAA; B34 is otherwise unmodeled), so the frame
// is assembled directly over the untyped Raw payload rather than through
// command.New. idleMinutes and fatigueMinutes must each be in [0, 1440].
func AlertThresholds(identifier byte, imei []byte, idleMinutes, fatigueMinutes int) ([]byte, error) {
	if idleMinutes < 0 || idleMinutes > 1440 {
		return nil, outOfRange("idleMinutes", idleMinutes)
	}
	if fatigueMinutes < 0 || fatigueMinutes > 1440 {
		return nil, outOfRange("fatigueMinutes", fatigueMinutes)
	}
	payload := fmt.Sprintf("%s,%d,%d", command.B34, idleMinutes, fatigueMinutes)
	cmd := &command.Command{Type: command.B34, Direction: wire.ServerToClient, Raw: []byte(payload)}
	return frame.Encode(wire.ServerToClient, identifier, imei, cmd), nil
}

// TimeZoneOffset builds a raw B36 GPRS time-zone request. This command
// type has no typed schema, so the frame is assembled directly over the
// untyped Raw payload. offsetMinutes must be in [-720, 840] (UTC-12:00
// to UTC+14:00).
func TimeZoneOffset(identifier byte, imei []byte, offsetMinutes int) ([]byte, error) {
	if offsetMinutes < -720 || offsetMinutes > 840 {
		return nil, outOfRange("offsetMinutes", offsetMinutes)
	}
	payload := fmt.Sprintf("%s,%d", command.B36, offsetMinutes)
	cmd := &command.Command{Type: command.B36, Direction: wire.ServerToClient, Raw: []byte(payload)}
	return frame.Encode(wire.ServerToClient, identifier, imei, cmd), nil
}

// OTAStage1Kickoff starts an OTA session and returns the driver along
// with the first frame to send (the stage-1 FC5 device-code check). The
// caller keeps driving the returned *ota.Driver's Next/Accept/CheckTimeout
// as subsequent frames arrive.
func OTAStage1Kickoff(imei []byte, expectedDeviceCode, otaHost, otaPort, fileName string, fileBytes []byte) (d *ota.Driver, firstFrame []byte, ok bool) {
	d = ota.New(expectedDeviceCode, otaHost, otaPort, fileName, fileBytes)
	d.Start()
	cmd, id, ok := d.Next(time.Now())
	if !ok {
		return d, nil, false
	}
	return d, frame.Encode(wire.ServerToClient, id, imei, cmd), true
}
