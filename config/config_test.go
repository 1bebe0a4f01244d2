package config

import "testing"

func TestValidFillsDefaults(t *testing.T) {
	c := Config{}
	if err := c.Valid(); err != nil {
		t.Fatalf("Valid: %v", err)
	}
	if c.MaxDeclaredLength != MaxDeclaredLengthMax {
		t.Fatalf("MaxDeclaredLength = %d, want %d", c.MaxDeclaredLength, MaxDeclaredLengthMax)
	}
	if c.OtaTimeout.String() != "30s" {
		t.Fatalf("OtaTimeout = %v, want 30s", c.OtaTimeout)
	}
	if c.ListenAddr != ":8800" {
		t.Fatalf("ListenAddr = %q, want :8800", c.ListenAddr)
	}
	if c.InventoryDBPath == "" {
		t.Fatalf("InventoryDBPath not defaulted")
	}
}

func TestValidRejectsOutOfRange(t *testing.T) {
	c := Config{MaxDeclaredLength: 4096}
	if err := c.Valid(); err == nil {
		t.Fatalf("expected error for MaxDeclaredLength above ceiling")
	}
}

func TestValidRejectsOtaTimeoutOutOfRange(t *testing.T) {
	c := Config{OtaTimeout: OtaTimeoutMax * 2}
	if err := c.Valid(); err == nil {
		t.Fatalf("expected error for OtaTimeout above ceiling")
	}
}

func TestValidNilPointer(t *testing.T) {
	var c *Config
	if err := c.Valid(); err == nil {
		t.Fatalf("expected error for nil pointer")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	if err := c.Valid(); err != nil {
		t.Fatalf("DefaultConfig() should already be Valid: %v", err)
	}
}
