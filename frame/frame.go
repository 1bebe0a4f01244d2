// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package frame implements the Meitrack outer envelope: decoding a byte
// stream into frames (prefix, identifier, declared length, IMEI, command,
// checksum, CRLF) and encoding a command back into one, per §4.4/§6.
package frame

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/scattym/go-meitrack/command"
	"github.com/scattym/go-meitrack/wire"
)

// checksumPlaceholder is accepted on decode regardless of Strict, per
// F-Inv-4: an internally-built outbound frame may carry it before signing.
const checksumPlaceholder = "XX"

// Frame is one decoded wire envelope.
type Frame struct {
	Direction      wire.Direction
	Identifier     byte
	DeclaredLength int
	IMEI           []byte
	Command        *command.Command
	Checksum       string
	ChecksumValid  bool
}

// Decode reads exactly one frame from the front of buf, which MUST already
// be positioned at the start of direction's two-byte prefix (Consume does
// the scanning for a stream). It returns (nil, 0, nil) when buf holds an
// incomplete frame so far (the caller should wait for more bytes), and
// (nil, n, err) when buf contains a malformed frame n bytes long that the
// caller should skip over to resynchronize; n is 0 for a missing prefix
// and for an over-size declared length. strict controls whether a
// checksum mismatch (other than the literal "XX" placeholder) is a hard
// *ChecksumError* or merely reported via Frame.ChecksumValid.
func Decode(direction wire.Direction, buf []byte, strict bool) (f *Frame, n int, err error) {
	prefix := direction.Prefix()
	if len(buf) < len(prefix)+1 || !bytes.HasPrefix(buf, prefix) {
		return nil, 0, fmt.Errorf("%w: missing %s prefix", wire.ErrFraming, direction)
	}
	identifier := buf[len(prefix)]

	firstComma := bytes.IndexByte(buf[len(prefix)+1:], ',')
	if firstComma < 0 {
		return nil, 0, nil // length digits haven't fully arrived yet
	}
	firstComma += len(prefix) + 1
	lengthDigits := buf[len(prefix)+1 : firstComma]
	declaredLength, convErr := strconv.Atoi(string(lengthDigits))
	if convErr != nil {
		return nil, firstComma + 1, fmt.Errorf("%w: non-numeric declared length %q", wire.ErrFraming, lengthDigits)
	}
	if declaredLength > wire.MaxDeclaredLength {
		return nil, 0, fmt.Errorf("%w: declared length %d exceeds %d", wire.ErrOverSize, declaredLength, wire.MaxDeclaredLength)
	}

	total := firstComma + declaredLength
	if len(buf) < total {
		return nil, 0, nil // rest of the frame hasn't arrived yet
	}
	full := buf[:total]

	if !bytes.HasSuffix(full, []byte(wire.EndOfFrame)) {
		return nil, total, fmt.Errorf("%w: frame does not end with CRLF", wire.ErrFraming)
	}
	withoutEOF := full[:len(full)-len(wire.EndOfFrame)]
	if len(withoutEOF) < 3 || withoutEOF[len(withoutEOF)-3] != '*' {
		return nil, total, fmt.Errorf("%w: missing '*' before checksum", wire.ErrFraming)
	}
	preStar := withoutEOF[:len(withoutEOF)-2] // includes the trailing '*'
	checksumBytes := withoutEOF[len(withoutEOF)-2:]

	rest := withoutEOF[firstComma+1 : len(preStar)-1] // "imei,payload", '*' excluded
	sep := bytes.IndexByte(rest, ',')
	if sep < 0 {
		return nil, total, fmt.Errorf("%w: missing imei/command separator", wire.ErrFraming)
	}
	imei := rest[:sep]
	payload := rest[sep+1:]
	if len(payload) < 3 {
		return nil, total, fmt.Errorf("%w: payload too short to carry a command type", wire.ErrFraming)
	}
	typ := command.Type(payload[:3])

	cmd, cmdErr := command.Parse(direction, typ, payload)
	if cmdErr != nil {
		return nil, total, cmdErr
	}

	computed := wire.Checksum(preStar)
	valid := computed == string(checksumBytes)
	if !valid && string(checksumBytes) != checksumPlaceholder {
		if strict {
			return nil, total, fmt.Errorf("%w: computed %s, wire carried %s", wire.ErrChecksum, computed, checksumBytes)
		}
	} else {
		valid = true
	}

	return &Frame{
		Direction:      direction,
		Identifier:     identifier,
		DeclaredLength: declaredLength,
		IMEI:           imei,
		Command:        cmd,
		Checksum:       string(checksumBytes),
		ChecksumValid:  valid,
	}, total, nil
}

// Consume scans buf for zero or more complete direction-prefixed frames.
// It returns the decoded frames, the bytes skipped before each recognized
// frame start (pre, useful only for resync diagnostics), and the trailing
// bytes that do not yet form a complete frame (leftover, to be prepended
// to the next read). It stops and returns err at the first malformed
// frame, after skipping past it so a subsequent call can resynchronize.
func Consume(direction wire.Direction, buf []byte, strict bool) (frames []*Frame, pre []byte, leftover []byte, err error) {
	prefix := direction.Prefix()
	pos := 0
	for {
		idx := bytes.Index(buf[pos:], prefix)
		if idx < 0 {
			leftover = buf[pos:]
			return frames, pre, leftover, nil
		}
		if idx > 0 {
			pre = append(pre, buf[pos:pos+idx]...)
		}
		pos += idx

		f, n, decErr := Decode(direction, buf[pos:], strict)
		if decErr != nil {
			if n > 0 {
				pos += n
			} else {
				pos++ // guarantee forward progress past an unparseable prefix
			}
			return frames, pre, buf[pos:], decErr
		}
		if f == nil {
			leftover = buf[pos:]
			return frames, pre, leftover, nil
		}
		frames = append(frames, f)
		pos += n
	}
}

// Encode serializes cmd into a complete wire frame addressed to imei,
// under the given identifier and direction.
func Encode(direction wire.Direction, identifier byte, imei []byte, cmd *command.Command) []byte {
	payload := cmd.Encode()
	// 1 (comma) + imei + 1 (comma) + payload + 1 ('*') + 2 (checksum) + 2 (CRLF)
	declaredLength := 1 + len(imei) + 1 + len(payload) + 1 + 2 + len(wire.EndOfFrame)

	var preStar bytes.Buffer
	preStar.Write(direction.Prefix())
	preStar.WriteByte(identifier)
	preStar.WriteString(strconv.Itoa(declaredLength))
	preStar.WriteByte(',')
	preStar.Write(imei)
	preStar.WriteByte(',')
	preStar.Write(payload)
	preStar.WriteByte('*')

	checksum := wire.Checksum(preStar.Bytes())

	out := make([]byte, 0, preStar.Len()+len(checksum)+len(wire.EndOfFrame))
	out = append(out, preStar.Bytes()...)
	out = append(out, checksum...)
	out = append(out, wire.EndOfFrame...)
	return out
}
