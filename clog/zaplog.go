// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package clog

import "go.uber.org/zap"

// ZapProvider is the ambient LogProvider: a structured logger in place
// of defaultLogger's bare stdlib wrapper. Lines logged through a provider
// returned by With carry that frame's context (§10.1); lines logged
// through an unscoped provider carry no such fields.
type ZapProvider struct {
	sugar *zap.SugaredLogger
}

var _ LogProvider = ZapProvider{}

// NewZapProvider wraps logger as a LogProvider.
func NewZapProvider(logger *zap.Logger) ZapProvider {
	return ZapProvider{sugar: logger.Sugar()}
}

// With returns a ZapProvider scoped to one frame's context: every
// subsequent log line through it carries imei, command_type, and
// direction fields.
func (z ZapProvider) With(imei, commandType, direction string) ZapProvider {
	return ZapProvider{sugar: z.sugar.With("imei", imei, "command_type", commandType, "direction", direction)}
}

// Critical logs at error level with a CRITICAL marker: zap has no
// distinct critical level.
func (z ZapProvider) Critical(format string, v ...interface{}) {
	z.sugar.Errorf("[CRITICAL] "+format, v...)
}

// Error logs at error level.
func (z ZapProvider) Error(format string, v ...interface{}) {
	z.sugar.Errorf(format, v...)
}

// Warn logs at warn level.
func (z ZapProvider) Warn(format string, v ...interface{}) {
	z.sugar.Warnf(format, v...)
}

// Debug logs at debug level.
func (z ZapProvider) Debug(format string, v ...interface{}) {
	z.sugar.Debugf(format, v...)
}
