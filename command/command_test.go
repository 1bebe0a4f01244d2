package command

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scattym/go-meitrack/wire"
)

func TestParseAAADefaultEvent(t *testing.T) {
	fields := []string{
		"AAA", "35", "24.819937", "121.070000", "180323023615", "A", "9", "28", "000",
		"omitted", "1", "50", "12345", "678", "0460|00|1234|5678|20", "01", "1FFF",
		"2A|3C", "cust", "1", "85", "temp", "acc", "dec", "u1", "u2", "u3", "u4", "u5",
	}
	payload := []byte(strings.Join(fields, ","))
	cmd, err := Parse(wire.ClientToServer, AAA, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cmd.Typed {
		t.Fatalf("expected typed command")
	}
	code, ok := cmd.EventCode()
	if !ok || code != 35 {
		t.Fatalf("EventCode() = %d, %v, want 35, true", code, ok)
	}
	name, ok := cmd.GetEventName()
	if !ok || name != "Track By Time Interval" {
		t.Fatalf("GetEventName() = %q, %v", name, ok)
	}
	dt, ok := cmd.GetDateTime("date_time")
	if !ok {
		t.Fatalf("GetDateTime() not ok")
	}
	want := time.Date(2018, 3, 23, 2, 36, 15, 0, time.UTC)
	if !dt.Equal(want) {
		t.Fatalf("GetDateTime() = %v, want %v", dt, want)
	}
	lat, ok := cmd.Get("latitude")
	if !ok || string(lat) != "24.819937" {
		t.Fatalf("Get(latitude) = %q, %v", lat, ok)
	}
}

func TestParseAAATaxiMeterEvent(t *testing.T) {
	fields := []string{
		"AAA", "109", "24.819937", "121.070000", "180323023615", "A", "9", "28", "000",
		"omitted", "1", "50", "12345", "678", "0460|00|1234|5678|20", "01", "1FFF",
		"2A|3C", "cust", "1", "85", "temp", "acc", "dec", "u1", "u2", "u3", "u4",
		"info|start|x|end|fare|trip|wait",
	}
	payload := []byte(strings.Join(fields, ","))
	cmd, err := Parse(wire.ClientToServer, AAA, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	trailer, ok := cmd.GetTaxiMeterData()
	if !ok {
		t.Fatalf("GetTaxiMeterData not ok")
	}
	if trailer.AssistedInfo != "info" || trailer.StartTime != "start" {
		t.Fatalf("unexpected trailer prefix: %+v", trailer)
	}
	if trailer.EndTime != "end" || trailer.Fare != "fare" || trailer.TripTime != "trip" || trailer.WaitTime != "wait" {
		t.Fatalf("unexpected trailer tail: %+v", trailer)
	}
}

func TestParseC01RoundTrip(t *testing.T) {
	cmd, err := Parse(wire.ServerToClient, C01, []byte("C01,1,010101"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	speed, ok := cmd.Get("speed")
	if !ok || string(speed) != "1" {
		t.Fatalf("Get(speed) = %q, %v", speed, ok)
	}
	pins, ok := cmd.Get("pin_bitmap")
	if !ok || string(pins) != "010101" {
		t.Fatalf("Get(pin_bitmap) = %q, %v", pins, ok)
	}
	if got := string(cmd.Encode()); got != "C01,1,010101" {
		t.Fatalf("Encode() = %q, want %q", got, "C01,1,010101")
	}
}

func TestNewBareRequestHasNoTrailingComma(t *testing.T) {
	cmd, ok := New(wire.ServerToClient, A10)
	if !ok {
		t.Fatalf("New(A10) not ok")
	}
	if got := string(cmd.Encode()); got != "A10" {
		t.Fatalf("Encode() = %q, want %q", got, "A10")
	}
}

func TestNewSetsCommandField(t *testing.T) {
	cmd, ok := New(wire.ServerToClient, A11)
	if !ok {
		t.Fatalf("New(A11) not ok")
	}
	cmd.Set("value", []byte("0"))
	if got := string(cmd.Encode()); got != "A11,0" {
		t.Fatalf("Encode() = %q, want %q", got, "A11,0")
	}
}

func TestParseFieldCountError(t *testing.T) {
	_, err := Parse(wire.ServerToClient, A11, []byte("A11,1,2"))
	if !errors.Is(err, wire.ErrFieldCount) {
		t.Fatalf("Parse() err = %v, want wrapping ErrFieldCount", err)
	}
}

func TestParseUnknownTypeFallsBackToRaw(t *testing.T) {
	raw := []byte("ZZZ,whatever,this,is")
	cmd, err := Parse(wire.ClientToServer, Type("ZZZ"), raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Typed {
		t.Fatalf("expected untyped fallback for unknown command type")
	}
	if string(cmd.Encode()) != string(raw) {
		t.Fatalf("Encode() = %q, want raw payload %q", cmd.Encode(), raw)
	}
}

func TestSetDateTimeRoundTrip(t *testing.T) {
	aaaCmd, err := Parse(wire.ClientToServer, AAA, []byte("AAA,35,1,2,180323023615,A,9,28,000,omitted,1,50,12345,678,a,b,c,d,e,f,g,h,i,j,k,l,m"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	aaaCmd.SetDateTime("date_time", want)
	got, ok := aaaCmd.GetDateTime("date_time")
	if !ok || !got.Equal(want) {
		t.Fatalf("round-tripped date_time = %v, %v, want %v", got, ok, want)
	}
}

func TestD00ResponseBoundedFieldAbsorbsCommas(t *testing.T) {
	cmd, err := Parse(wire.ClientToServer, D00, []byte("D00,photo.jpg,3,0,a,b,c"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, total, index, bytesField, ok := cmd.GetFileData()
	if !ok {
		t.Fatalf("GetFileData not ok")
	}
	if string(data) != "photo.jpg" || total != 3 || index != 0 {
		t.Fatalf("unexpected header: name=%q total=%d index=%d", data, total, index)
	}
	if string(bytesField) != "a,b,c" {
		t.Fatalf("file_bytes = %q, want %q (commas absorbed)", bytesField, "a,b,c")
	}
}
