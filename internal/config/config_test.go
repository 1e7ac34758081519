package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Tickets.Prefix != "ITWO-QA" {
		t.Errorf("default ticket prefix = %q, expected %q", cfg.Tickets.Prefix, "ITWO-QA")
	}
	if cfg.Tickets.Width != 4 {
		t.Errorf("default ticket width = %d, expected 4", cfg.Tickets.Width)
	}
	if cfg.Uploads.MaxSizeMB != 10 {
		t.Errorf("default upload limit = %dMB, expected 10", cfg.Uploads.MaxSizeMB)
	}
	if cfg.Uploads.MaxPerReport != 5 {
		t.Errorf("default screenshots per report = %d, expected 5", cfg.Uploads.MaxPerReport)
	}
	if len(cfg.Auth.AllowedEmails) != 0 {
		t.Error("default allow-list should be empty (allow everyone)")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, expected default", cfg.Server.Port)
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"9090\"\ntickets:\n  prefix: \"ACME-BUG\"\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Tickets.Prefix != "ACME-BUG" {
		t.Errorf("prefix = %q, expected %q", cfg.Tickets.Prefix, "ACME-BUG")
	}
	// Unset values fall back to defaults
	if cfg.Tickets.Width != 4 {
		t.Errorf("width = %d, expected default 4", cfg.Tickets.Width)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, expected default sqlite", cfg.Database.Driver)
	}
}

func TestOverrideFromEnv_AllowedEmails(t *testing.T) {
	t.Setenv("ALLOWED_EMAILS", "a@x.com, b@x.com ,, c@x.com")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	if len(cfg.Auth.AllowedEmails) != len(want) {
		t.Fatalf("allow-list = %v, expected %v", cfg.Auth.AllowedEmails, want)
	}
	for i, w := range want {
		if cfg.Auth.AllowedEmails[i] != w {
			t.Errorf("allow-list[%d] = %q, expected %q", i, cfg.Auth.AllowedEmails[i], w)
		}
	}
}

func TestParseRedisURL(t *testing.T) {
	cases := []struct {
		url      string
		addr     string
		password string
		db       int
	}{
		{"redis://localhost:6379", "localhost:6379", "", 0},
		{"redis://:secret@redis.internal:6380/2", "redis.internal:6380", "secret", 2},
		{"redis://user:pw@host:6379/1", "host:6379", "pw", 1},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.parseRedisURL(tc.url)

		if cfg.Redis.Addr != tc.addr {
			t.Errorf("%s: Addr = %q, expected %q", tc.url, cfg.Redis.Addr, tc.addr)
		}
		if cfg.Redis.Password != tc.password {
			t.Errorf("%s: Password = %q, expected %q", tc.url, cfg.Redis.Password, tc.password)
		}
		if cfg.Redis.DB != tc.db {
			t.Errorf("%s: DB = %d, expected %d", tc.url, cfg.Redis.DB, tc.db)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a , b ,, c ", ",")
	want := []string{"a", "b", "c"}

	if len(got) != len(want) {
		t.Fatalf("got %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}
