package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		JWTSecret:      "secret",
		MinAmount:      "0",
		DataBackend:    "memory",
		SQLiteDBPath:   "./data/test.db",
		ExportInterval: 30 * time.Second,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"negative minimum", func(c *Config) { c.MinAmount = "-5" }, "minimum amount"},
		{"unknown backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"empty amqp queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue"},
		{"export interval too short", func(c *Config) { c.ExportInterval = time.Millisecond }, "export interval"},
	}
	for _, tc := range cases {
		c := validConfig()
		c.AMQPExchange = "drivelogger"
		c.AMQPQueue = "record_changes"
		tc.mutate(c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: error %q missing %q", tc.name, err, tc.wantMsg)
		}
	}
}

func TestMinAmountCents(t *testing.T) {
	c := validConfig()
	c.MinAmount = "5"
	cents, err := c.MinAmountCents()
	if err != nil || cents != 500 {
		t.Fatalf("expected 500 cents, got %d (err=%v)", cents, err)
	}

	c.MinAmount = "0"
	cents, err = c.MinAmountCents()
	if err != nil || cents != 0 {
		t.Fatalf("expected 0 cents, got %d (err=%v)", cents, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", c.Port)
	}
	if c.DataBackend != "memory" {
		t.Fatalf("expected default backend memory, got %s", c.DataBackend)
	}
	if c.MinAmount != "0" {
		t.Fatalf("expected default minimum 0, got %s", c.MinAmount)
	}
}
