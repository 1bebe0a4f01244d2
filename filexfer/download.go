// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package filexfer reassembles the two multi-packet exchanges the device
// uses to ship data up to the headend: D00 chunked file downloads and D01
// paginated file listings (§3, §4.5, §4.6).
package filexfer

import (
	"bytes"
	"fmt"
	"time"
)

// ErrMismatch is returned when a later chunk/fragment reports a different
// total than the one an aggregation session started with.
var ErrMismatch = fmt.Errorf("meitrack: file transfer state error: mismatch")

// downloadKey identifies one in-flight file download.
type downloadKey struct {
	imei     string
	fileName string
}

// download holds the chunks seen so far for one (imei, file_name) pair.
type download struct {
	total       int
	chunks      map[int][]byte
	lastUpdated time.Time
}

// Downloads assembles D00 chunk streams into complete files, keyed by
// (imei, file_name). Out-of-order chunks are accepted; duplicate indices
// overwrite. The zero value is ready to use.
type Downloads struct {
	sessions map[downloadKey]*download
}

// NewDownloads returns a ready-to-use aggregator.
func NewDownloads() *Downloads {
	return &Downloads{sessions: make(map[downloadKey]*download)}
}

// Accept records one chunk of a file download. total must stay constant
// across all chunks of the same (imei, file_name); a later chunk
// reporting a different total fails with ErrMismatch and the session is
// left untouched.
func (d *Downloads) Accept(imei, fileName string, total, index int, data []byte) error {
	if d.sessions == nil {
		d.sessions = make(map[downloadKey]*download)
	}
	key := downloadKey{imei: imei, fileName: fileName}
	sess, ok := d.sessions[key]
	if !ok {
		sess = &download{total: total, chunks: make(map[int][]byte, total)}
		d.sessions[key] = sess
	} else if sess.total != total {
		return fmt.Errorf("%w: download %s/%s declared total %d, chunk declares %d",
			ErrMismatch, imei, fileName, sess.total, total)
	}
	sess.chunks[index] = data
	sess.lastUpdated = time.Now()
	return nil
}

// Complete reports whether every index in [0, total) has been received.
func (d *Downloads) Complete(imei, fileName string) bool {
	sess := d.sessions[downloadKey{imei: imei, fileName: fileName}]
	if sess == nil {
		return false
	}
	return len(sess.chunks) >= sess.total && nextMissing(sess) == sess.total
}

// NextExpected returns the smallest chunk index not yet received, or
// total if the download is complete. ok is false if no such session
// exists.
func (d *Downloads) NextExpected(imei, fileName string) (index int, ok bool) {
	sess := d.sessions[downloadKey{imei: imei, fileName: fileName}]
	if sess == nil {
		return 0, false
	}
	return nextMissing(sess), true
}

// Materialize concatenates the chunks of a complete download in index
// order, returns the assembled bytes, and removes the session. ok is
// false (no bytes returned) if the download is not yet complete or does
// not exist: the aggregator never returns a partial file.
func (d *Downloads) Materialize(imei, fileName string) (data []byte, ok bool) {
	key := downloadKey{imei: imei, fileName: fileName}
	sess := d.sessions[key]
	if sess == nil || nextMissing(sess) != sess.total {
		return nil, false
	}
	var buf bytes.Buffer
	for i := 0; i < sess.total; i++ {
		buf.Write(sess.chunks[i])
	}
	delete(d.sessions, key)
	return buf.Bytes(), true
}

// LastUpdated reports when the session for (imei, file_name) last
// accepted a chunk, for caller-driven stale-session eviction.
func (d *Downloads) LastUpdated(imei, fileName string) (time.Time, bool) {
	sess := d.sessions[downloadKey{imei: imei, fileName: fileName}]
	if sess == nil {
		return time.Time{}, false
	}
	return sess.lastUpdated, true
}

func nextMissing(sess *download) int {
	for i := 0; i < sess.total; i++ {
		if _, ok := sess.chunks[i]; !ok {
			return i
		}
	}
	return sess.total
}
