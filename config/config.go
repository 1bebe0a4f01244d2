// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package config defines the session-wide configuration for the
// Meitrack codec and its ambient services: frame-size ceiling, checksum
// strictness, OTA timeout, and the transport/broker/store endpoints
// (§10.2).
package config

import (
	"errors"
	"time"
)

// defines the Meitrack session configuration range.
const (
	// MaxDeclaredLengthMin/Max bound the frame envelope's declared_length
	// ceiling (§4.4).
	MaxDeclaredLengthMin = 64
	MaxDeclaredLengthMax = 2048

	// OtaTimeoutMin/Max bound the OTA driver's outstanding-request
	// deadline (§4.7).
	OtaTimeoutMin = 1 * time.Second
	OtaTimeoutMax = 5 * time.Minute
)

// Config defines a session's configuration. The default is applied for
// each unspecified value.
type Config struct {
	// MaxDeclaredLength is the frame envelope's declared_length ceiling.
	// Default 2048. Valid defaults and range-checks it; frame.Decode does
	// not read it and always applies wire.MaxDeclaredLength (2048).
	MaxDeclaredLength int

	// OtaTimeout is the OTA driver's outstanding-request deadline.
	// Default 30s.
	OtaTimeout time.Duration

	// Strict rejects a checksum mismatch instead of flagging the frame
	// and continuing (§4.4, F-Inv-4). Default false.
	Strict bool

	// ListenAddr is the ambient TCP listener's bind address (§10.4).
	ListenAddr string

	// MQTTBrokerURL is the event bridge's broker address (§10.3).
	MQTTBrokerURL string

	// InventoryDBPath is the embedded device-inventory store's file path
	// (§10.3).
	InventoryDBPath string
}

// Valid applies the documented default for each unspecified value and
// rejects out-of-range non-zero ones.
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("meitrack/config: invalid pointer")
	}

	if c.MaxDeclaredLength == 0 {
		c.MaxDeclaredLength = MaxDeclaredLengthMax
	} else if c.MaxDeclaredLength < MaxDeclaredLengthMin || c.MaxDeclaredLength > MaxDeclaredLengthMax {
		return errors.New("meitrack/config: MaxDeclaredLength not in [64, 2048]")
	}

	if c.OtaTimeout == 0 {
		c.OtaTimeout = 30 * time.Second
	} else if c.OtaTimeout < OtaTimeoutMin || c.OtaTimeout > OtaTimeoutMax {
		return errors.New("meitrack/config: OtaTimeout not in [1s, 5m]")
	}

	if c.ListenAddr == "" {
		c.ListenAddr = ":8800"
	}

	if c.InventoryDBPath == "" {
		c.InventoryDBPath = "meitrack-inventory.db"
	}

	return nil
}

// DefaultConfig returns a ready-to-use zero-config instance: every field
// is its documented default, checksum leniency is on (Strict=false), and
// no broker URL is set (the event bridge is opt-in).
func DefaultConfig() Config {
	return Config{
		MaxDeclaredLength: MaxDeclaredLengthMax,
		OtaTimeout:        30 * time.Second,
		Strict:            false,
		ListenAddr:        ":8800",
		InventoryDBPath:   "meitrack-inventory.db",
	}
}
