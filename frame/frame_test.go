package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/scattym/go-meitrack/command"
	"github.com/scattym/go-meitrack/wire"
)

func TestDecodeHeartbeatScenario(t *testing.T) {
	raw := []byte("@@l16,0407,A11,0*9F\r\n")
	f, n, err := Decode(wire.ServerToClient, raw, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(raw) {
		t.Fatalf("consumed %d, want %d", n, len(raw))
	}
	if string(f.IMEI) != "0407" {
		t.Fatalf("IMEI = %q", f.IMEI)
	}
	if f.Identifier != 'l' {
		t.Fatalf("Identifier = %q", f.Identifier)
	}
	if f.DeclaredLength != 16 {
		t.Fatalf("DeclaredLength = %d", f.DeclaredLength)
	}
	if !f.ChecksumValid || f.Checksum != "9F" {
		t.Fatalf("Checksum = %q valid=%v", f.Checksum, f.ChecksumValid)
	}
	if f.Command.Type != command.A11 {
		t.Fatalf("Command.Type = %v", f.Command.Type)
	}
	value, ok := f.Command.Get("value")
	if !ok || string(value) != "0" {
		t.Fatalf("Get(value) = %q, %v", value, ok)
	}
}

func TestDecodeLocationQueryScenarioNoTrailingComma(t *testing.T) {
	raw := []byte("@@c14,0407,A10*37\r\n")
	f, n, err := Decode(wire.ServerToClient, raw, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(raw) {
		t.Fatalf("consumed %d, want %d", n, len(raw))
	}
	if f.DeclaredLength != 14 {
		t.Fatalf("DeclaredLength = %d", f.DeclaredLength)
	}
	if !f.ChecksumValid {
		t.Fatalf("expected valid checksum")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cmd, ok := command.New(wire.ServerToClient, command.A11)
	if !ok {
		t.Fatalf("New(A11) not ok")
	}
	cmd.Set("value", []byte("0"))
	out := Encode(wire.ServerToClient, 'l', []byte("0407"), cmd)
	if string(out) != "@@l16,0407,A11,0*9F\r\n" {
		t.Fatalf("Encode() = %q", out)
	}

	f, n, err := Decode(wire.ServerToClient, out, true)
	if err != nil {
		t.Fatalf("Decode(Encode(x)): %v", err)
	}
	if n != len(out) {
		t.Fatalf("consumed %d, want %d", n, len(out))
	}
	if string(f.IMEI) != "0407" || f.Command.Type != command.A11 {
		t.Fatalf("round-trip mismatch: imei=%q type=%v", f.IMEI, f.Command.Type)
	}
}

func TestEncodeBareRequestOmitsTrailingComma(t *testing.T) {
	cmd, ok := command.New(wire.ServerToClient, command.A10)
	if !ok {
		t.Fatalf("New(A10) not ok")
	}
	out := Encode(wire.ServerToClient, 'c', []byte("0407"), cmd)
	if string(out) != "@@c14,0407,A10*37\r\n" {
		t.Fatalf("Encode() = %q", out)
	}
}

func TestChecksumLaw(t *testing.T) {
	raw := []byte("@@l16,0407,A11,0*9F\r\n")
	f, _, err := Decode(wire.ServerToClient, raw, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	preStar := raw[:bytes.IndexByte(raw, '*')+1]
	if wire.Checksum(preStar) != f.Checksum {
		t.Fatalf("checksum law violated: computed %s, frame carries %s", wire.Checksum(preStar), f.Checksum)
	}
}

func TestConsumeStreamIdempotence(t *testing.T) {
	full := []byte("@@l16,0407,A11,0*9F\r\n@@c14,0407,A10*37\r\n")
	partial := []byte("@@c14,0407,A1")
	buf := append(append([]byte{}, full...), partial...)

	frames, pre, leftover, err := Consume(wire.ServerToClient, buf, true)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if len(pre) != 0 {
		t.Fatalf("pre = %q, want empty", pre)
	}
	if string(leftover) != string(partial) {
		t.Fatalf("leftover = %q, want %q", leftover, partial)
	}
}

func TestConsumeSkipsJunkBeforeFirstPrefix(t *testing.T) {
	buf := append([]byte("garbage"), []byte("@@c14,0407,A10*37\r\n")...)
	frames, pre, leftover, err := Consume(wire.ServerToClient, buf, true)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if string(pre) != "garbage" {
		t.Fatalf("pre = %q, want %q", pre, "garbage")
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if len(leftover) != 0 {
		t.Fatalf("leftover = %q, want empty", leftover)
	}
}

func TestDecodeOverSize(t *testing.T) {
	raw := []byte("@@l9999,0407,A10*37\r\n")
	_, _, err := Decode(wire.ServerToClient, raw, true)
	if !errors.Is(err, wire.ErrOverSize) {
		t.Fatalf("err = %v, want wrapping ErrOverSize", err)
	}
}

func TestDecodeFramingErrorMissingCRLF(t *testing.T) {
	raw := []byte("@@c14,0407,A10*37XX")
	_, n, err := Decode(wire.ServerToClient, raw, true)
	if !errors.Is(err, wire.ErrFraming) {
		t.Fatalf("err = %v, want wrapping ErrFraming", err)
	}
	if n != len(raw) {
		t.Fatalf("n = %d, want %d (consumed for resync)", n, len(raw))
	}
}

func TestDecodeChecksumMismatchLenient(t *testing.T) {
	raw := []byte("@@c14,0407,A10*00\r\n")
	f, n, err := Decode(wire.ServerToClient, raw, false)
	if err != nil {
		t.Fatalf("Decode (lenient): %v", err)
	}
	if n != len(raw) {
		t.Fatalf("n = %d, want %d", n, len(raw))
	}
	if f.ChecksumValid {
		t.Fatalf("expected ChecksumValid=false for mismatched checksum")
	}
}

func TestDecodeChecksumMismatchStrict(t *testing.T) {
	raw := []byte("@@c14,0407,A10*00\r\n")
	_, _, err := Decode(wire.ServerToClient, raw, true)
	if !errors.Is(err, wire.ErrChecksum) {
		t.Fatalf("err = %v, want wrapping ErrChecksum", err)
	}
}

func TestDecodeChecksumPlaceholderAcceptedRegardless(t *testing.T) {
	raw := []byte("@@c14,0407,A10*XX\r\n")
	f, _, err := Decode(wire.ServerToClient, raw, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !f.ChecksumValid {
		t.Fatalf("expected placeholder XX to be accepted")
	}
}

func TestDecodeIncompleteAwaitsMoreData(t *testing.T) {
	raw := []byte("@@l16,0407,A11,0*9")
	f, n, err := Decode(wire.ServerToClient, raw, true)
	if f != nil || n != 0 || err != nil {
		t.Fatalf("Decode(incomplete) = %v, %d, %v, want nil, 0, nil", f, n, err)
	}
}
