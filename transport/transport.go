// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package transport is the TCP accept loop: one goroutine per connected
// device, each owning exactly one frame-codec stream buffer, one
// Downloads aggregator, one Listings aggregator, and (when a firmware
// update is in flight for that device) one ota.Driver, enforcing §5's
// one-aggregator-per-device rule structurally (§10.4).
package transport

import (
	"context"
	"net"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"github.com/scattym/go-meitrack/clog"
	"github.com/scattym/go-meitrack/command"
	"github.com/scattym/go-meitrack/config"
	"github.com/scattym/go-meitrack/eventbridge"
	"github.com/scattym/go-meitrack/filexfer"
	"github.com/scattym/go-meitrack/frame"
	"github.com/scattym/go-meitrack/inventory"
	"github.com/scattym/go-meitrack/ota"
	"github.com/scattym/go-meitrack/wire"
)

// readBufSize is the chunk size read per conn.Read call. A decoded frame
// may span several reads; undigested bytes accumulate in the session's
// own buf between calls.
const readBufSize = 4096

// OTARequester decides whether a newly-identified device should be sent
// through a firmware update, supplying the parameters New needs when it
// answers yes.
type OTARequester func(imei string) (expectedDeviceCode, otaHost, otaPort, fileName string, fileBytes []byte, ok bool)

// Listener accepts device TCP connections and drives each one through
// the frame codec and the aggregators/driver that belong to it alone.
type Listener struct {
	Config config.Config

	// Inventory, if non-nil, durably records completed downloads and
	// listings and the outcome of OTA sessions (§10.3).
	Inventory *bolt.DB

	// EventBridge, if non-nil, publishes every decoded AAA location
	// event (§10.3).
	EventBridge *eventbridge.Bridge

	// Logger receives warnings and errors encountered while serving
	// connections. May be nil.
	Logger clog.LogProvider

	// OTARequests, if set, is polled once per newly-identified device to
	// decide whether to start a firmware-update session for it.
	OTARequests OTARequester

	mu     sync.Mutex
	active map[*session]struct{}
}

// Listen binds Config.ListenAddr and serves connections until ctx is
// canceled or the listener errors. Each connection runs in its own
// goroutine under an errgroup: one connection's handling never blocks or
// kills the others, and canceling ctx unblocks the accept loop by closing
// the listener.
func (l *Listener) Listen(ctx context.Context) error {
	if err := l.Config.Valid(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", l.Config.ListenAddr)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-gctx.Done():
				return group.Wait()
			default:
				return err
			}
		}
		group.Go(func() error {
			l.handleConn(gctx, conn)
			return nil
		})
	}
}

// session is the per-connection state §10.4 requires: exactly one
// download aggregator, one listing aggregator, and (optionally, while a
// firmware update is in flight) one OTA driver, all scoped to the single
// device on the other end of conn.
type session struct {
	imei      string
	conn      net.Conn
	downloads *filexfer.Downloads
	listings  *filexfer.Listings

	// otaMu guards ota: handleFrame's goroutine and the ticker-driven
	// PollTimeouts both touch the driver for an in-flight update.
	otaMu sync.Mutex
	ota   *ota.Driver
}

func (s *session) send(cmd *command.Command, identifier byte) {
	s.conn.Write(frame.Encode(wire.ServerToClient, identifier, []byte(s.imei), cmd))
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	s := &session{
		conn:      conn,
		downloads: filexfer.NewDownloads(),
		listings:  filexfer.NewListings(),
	}
	l.trackSession(s)
	defer l.untrackSession(s)

	var buf []byte
	read := make([]byte, readBufSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := conn.Read(read)
		if n > 0 {
			buf = append(buf, read[:n]...)
			frames, _, leftover, decErr := frame.Consume(wire.ClientToServer, buf, l.Config.Strict)
			buf = leftover
			for _, f := range frames {
				l.handleFrame(s, f)
			}
			if decErr != nil && l.Logger != nil {
				l.Logger.Warn("transport: frame decode error from %s: %v", conn.RemoteAddr(), decErr)
			}
		}
		if err != nil {
			return
		}
	}
}

func (l *Listener) handleFrame(s *session, f *frame.Frame) {
	if s.imei == "" {
		s.imei = string(f.IMEI)
		l.maybeStartOTA(s)
	}

	cmd := f.Command
	switch cmd.Type {
	case command.AAA:
		l.publishEvent(s, cmd)
		return
	case command.D00:
		l.handleDownloadChunk(s, cmd)
		return
	case command.D01:
		l.handleListingFragment(s, cmd)
		return
	}

	l.driveOTA(s, cmd)
}

func (l *Listener) maybeStartOTA(s *session) {
	if l.OTARequests == nil {
		return
	}
	code, host, port, name, data, ok := l.OTARequests(s.imei)
	if !ok {
		return
	}

	s.otaMu.Lock()
	defer s.otaMu.Unlock()
	s.ota = ota.New(code, host, port, name, data)
	s.ota.Timeout = l.Config.OtaTimeout
	s.ota.Start()
	l.pumpOTALocked(s)
}

// driveOTA feeds a non-file-transfer response to the connection's OTA
// driver, if one is active and awaiting it. No-op otherwise.
func (l *Listener) driveOTA(s *session, cmd *command.Command) {
	s.otaMu.Lock()
	defer s.otaMu.Unlock()

	d := s.ota
	if d == nil || d.IsFinished() {
		return
	}

	if err := d.Accept(cmd); err != nil && l.Logger != nil {
		l.Logger.Warn("transport: ota session for %s: %v", s.imei, err)
	}
	if d.IsError() {
		cancel, id := d.CancelFrame()
		s.send(cancel, id)
		l.recordOTAResultLocked(s)
		return
	}
	l.pumpOTALocked(s)
	if d.IsFinished() {
		l.recordOTAResultLocked(s)
	}
}

// pumpOTALocked drains every command the driver is currently willing to
// send: a burst of fire-and-forget FC1 chunks followed by the single
// request that then blocks waiting on a device response (§4.7). Caller
// must hold s.otaMu.
func (l *Listener) pumpOTALocked(s *session) {
	if s.ota == nil {
		return
	}
	for {
		cmd, id, ok := s.ota.Next(time.Now())
		if !ok {
			return
		}
		s.send(cmd, id)
	}
}

// recordOTAResultLocked persists the outcome of s's just-finished (or
// just failed) OTA session. Caller must hold s.otaMu.
func (l *Listener) recordOTAResultLocked(s *session) {
	if l.Inventory == nil || s.ota == nil {
		return
	}

	result := inventory.OTAResult{
		FileName:   s.ota.FileName,
		Success:    s.ota.State() == ota.FinishedSuccess,
		FinishedAt: time.Now(),
	}
	if err := s.ota.Err(); err != nil {
		result.Error = err.Error()
	}
	if err := inventory.RecordOTAResult(l.Inventory, s.imei, result); err != nil && l.Logger != nil {
		l.Logger.Warn("transport: recording ota result for %s: %v", s.imei, err)
	}
}

func (l *Listener) trackSession(s *session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		l.active = make(map[*session]struct{})
	}
	l.active[s] = struct{}{}
}

func (l *Listener) untrackSession(s *session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, s)
}

// PollTimeouts walks every connected device's OTA driver and resends or
// fails any outstanding request past its deadline. The cmd/ entry point
// calls this on a ticker since no connection event otherwise drives an
// idle driver forward (§4.7 timeout handling).
func (l *Listener) PollTimeouts(now time.Time) {
	l.mu.Lock()
	sessions := make([]*session, 0, len(l.active))
	for s := range l.active {
		sessions = append(sessions, s)
	}
	l.mu.Unlock()

	for _, s := range sessions {
		s.otaMu.Lock()
		l.pollSessionTimeoutLocked(s, now)
		s.otaMu.Unlock()
	}
}

func (l *Listener) pollSessionTimeoutLocked(s *session, now time.Time) {
	if s.ota == nil || s.ota.IsFinished() {
		return
	}
	if !s.ota.CheckTimeout(now) {
		return
	}
	if s.ota.IsError() {
		cancel, id := s.ota.CancelFrame()
		s.send(cancel, id)
		l.recordOTAResultLocked(s)
		return
	}
	l.pumpOTALocked(s)
}

func (l *Listener) publishEvent(s *session, cmd *command.Command) {
	if l.EventBridge == nil {
		return
	}
	ev, ok := eventbridge.EventFromCommand(cmd)
	if !ok {
		return
	}
	if err := l.EventBridge.PublishEvent(s.imei, ev); err != nil && l.Logger != nil {
		l.Logger.Error("transport: publish event for %s: %v", s.imei, err)
	}
}

func (l *Listener) handleDownloadChunk(s *session, cmd *command.Command) {
	fileName, total, index, data, ok := cmd.GetFileData()
	if !ok {
		return
	}

	if err := s.downloads.Accept(s.imei, string(fileName), total, index, data); err != nil {
		if l.Logger != nil {
			l.Logger.Warn("transport: download chunk for %s/%s: %v", s.imei, fileName, err)
		}
		return
	}

	if s.downloads.Complete(s.imei, string(fileName)) && l.Inventory != nil {
		inventory.Remember(l.Inventory, s.imei, string(fileName))
	}
}

func (l *Listener) handleListingFragment(s *session, cmd *command.Command) {
	total, index, fragment, ok := cmd.GetFileList()
	if !ok {
		return
	}

	// The wire protocol carries no separate listing-session id: one D01
	// exchange runs at a time per connection, so the imei alone keys it.
	if err := s.listings.Accept(s.imei, s.imei, total, index, string(fragment)); err != nil {
		if l.Logger != nil {
			l.Logger.Warn("transport: listing fragment for %s: %v", s.imei, err)
		}
		return
	}

	files, ok := s.listings.FileSet(s.imei, s.imei)
	if !ok || l.Inventory == nil {
		return
	}
	for _, file := range files {
		inventory.Remember(l.Inventory, s.imei, file)
	}
}
