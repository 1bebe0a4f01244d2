package clog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapProviderWithAttachesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewZapProvider(zap.New(core)).With("864507032228727", "AAA", "client->server")

	p.Warn("decoded event %d", 35)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["imei"] != "864507032228727" || fields["command_type"] != "AAA" || fields["direction"] != "client->server" {
		t.Fatalf("fields = %v, missing expected imei/command_type/direction", fields)
	}
}

func TestClogGatesOnLogMode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := Clog{}
	c.SetLogProvider(NewZapProvider(zap.New(core)))

	c.Error("should not appear")
	if len(logs.All()) != 0 {
		t.Fatalf("expected no log output while disabled")
	}

	c.LogMode(true)
	c.Error("should appear")
	if len(logs.All()) != 1 {
		t.Fatalf("expected one log line once enabled, got %d", len(logs.All()))
	}
}
