package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SessionIdleTimeoutMS != DefaultSessionIdleTimeoutMS {
		t.Errorf("SessionIdleTimeoutMS = %d, want default", cfg.SessionIdleTimeoutMS)
	}
	if len(cfg.SupportedProtocolVersions) == 0 {
		t.Error("expected default protocol versions")
	}
}

func TestSaveToThenLoadFromRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := NewConfig()
	cfg.ServerInfo.Name = "demo"
	limit := 50
	cfg.ListPaginationLimit = &limit

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.ServerInfo.Name != "demo" {
		t.Errorf("ServerInfo.Name = %q, want demo", loaded.ServerInfo.Name)
	}
	if loaded.ListPaginationLimit == nil || *loaded.ListPaginationLimit != 50 {
		t.Errorf("ListPaginationLimit = %v, want 50", loaded.ListPaginationLimit)
	}
}

func TestSupportsBatching(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"2025-03-26", true},
		{"2025-06-01", true},
		{"2024-11-05", false},
	}
	for _, tc := range cases {
		if got := SupportsBatching(tc.version); got != tc.want {
			t.Errorf("SupportsBatching(%q) = %v, want %v", tc.version, got, tc.want)
		}
	}
}
