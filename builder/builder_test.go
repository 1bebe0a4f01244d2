package builder

import (
	"bytes"
	"errors"
	"testing"
)

func TestLocationQueryMatchesScenario(t *testing.T) {
	got := LocationQuery('c', []byte("0407"))
	want := []byte("@@c14,0407,A10*37\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("LocationQuery() = %q, want %q", got, want)
	}
}

func TestHeartbeatMatchesScenario(t *testing.T) {
	got, err := Heartbeat('l', []byte("0407"), 0)
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	want := []byte("@@l16,0407,A11,0*9F\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("Heartbeat() = %q, want %q", got, want)
	}
}

func TestHeartbeatOutOfRange(t *testing.T) {
	if _, err := Heartbeat('a', []byte("0407"), 65536); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if _, err := Heartbeat('a', []byte("0407"), -1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestCorneringAngleOutOfRange(t *testing.T) {
	if _, err := CorneringAngle('a', []byte("0407"), 360); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestSetOutputPinRejectsOutOfRangeState(t *testing.T) {
	// set_output_pin(speed=2, pin=255, state=1): an out-of-domain tri-state
	// value (§8 scenario 2) must produce no frame.
	_, err := SetOutputPin('a', []byte("0407"), 2, [5]PinState{255, PinOn, PinOff, PinOn, PinOff})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestSetOutputPinRejectsBadSpeed(t *testing.T) {
	_, err := SetOutputPin('a', []byte("0407"), 3, [5]PinState{PinOff, PinOff, PinOff, PinOff, PinOff})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestSetOutputPinValid(t *testing.T) {
	got, err := SetOutputPin('a', []byte("0407"), 1, [5]PinState{PinOn, PinOff, PinUnchanged, PinOn, PinOff})
	if err != nil {
		t.Fatalf("SetOutputPin: %v", err)
	}
	if !bytes.Contains(got, []byte("C01,1,10210")) {
		t.Fatalf("SetOutputPin() = %q, want payload containing C01,1,10210", got)
	}
}

func TestDeleteRemoteFilesJoinsWithPipe(t *testing.T) {
	got := DeleteRemoteFiles('a', []byte("0407"), []string{"a.jpg", "b.jpg"})
	if !bytes.Contains(got, []byte("D02,a.jpg|b.jpg")) {
		t.Fatalf("DeleteRemoteFiles() = %q, want payload containing D02,a.jpg|b.jpg", got)
	}
}

func TestAlertThresholdsOutOfRange(t *testing.T) {
	if _, err := AlertThresholds('a', []byte("0407"), 1441, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestTimeZoneOffsetOutOfRange(t *testing.T) {
	if _, err := TimeZoneOffset('a', []byte("0407"), 841); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if _, err := TimeZoneOffset('a', []byte("0407"), -721); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestOTAStage1KickoffReturnsFC5Frame(t *testing.T) {
	_, frame, ok := OTAStage1Kickoff([]byte("0407"), "DC001", "10.0.0.1", "9000", "app.bin", []byte("x"))
	if !ok {
		t.Fatalf("OTAStage1Kickoff not ok")
	}
	if !bytes.Contains(frame, []byte(",FC5*")) {
		t.Fatalf("OTAStage1Kickoff frame = %q, want FC5 payload", frame)
	}
}
