package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml config",
			setup: func(t *testing.T) string {
				content := []byte(`
scanning:
  workers: 16
  probe_timeout: 2s
  default_ports: "80,443"
logging:
  level: debug
`)
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, content, 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Scanning.Workers != 16 {
					t.Errorf("Workers = %d, want 16", cfg.Scanning.Workers)
				}
				if cfg.Scanning.ProbeTimeout != 2*time.Second {
					t.Errorf("ProbeTimeout = %v, want 2s", cfg.Scanning.ProbeTimeout)
				}
				if cfg.Scanning.DefaultPorts != "80,443" {
					t.Errorf("DefaultPorts = %q, want 80,443", cfg.Scanning.DefaultPorts)
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("Level = %q, want debug", cfg.Logging.Level)
				}
				// Unset fields keep their defaults.
				if cfg.Logging.Output != "stderr" {
					t.Errorf("Output = %q, want stderr", cfg.Logging.Output)
				}
			},
		},
		{
			name: "missing file returns defaults",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist.yaml")
			},
			check: func(t *testing.T, cfg *Config) {
				want := Default()
				if cfg.Scanning.Workers != want.Scanning.Workers {
					t.Errorf("Workers = %d, want default %d",
						cfg.Scanning.Workers, want.Scanning.Workers)
				}
			},
		},
		{
			name: "invalid yaml syntax",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, []byte("scanning: ["), 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantErr: true,
		},
		{
			name: "validation failure",
			setup: func(t *testing.T) string {
				content := []byte(`
scanning:
  workers: -1
`)
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, content, 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(cfg *Config) {},
		},
		{
			name:    "zero workers",
			modify:  func(cfg *Config) { cfg.Scanning.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(cfg *Config) { cfg.Scanning.ProbeTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "unknown protocol",
			modify:  func(cfg *Config) { cfg.Scanning.Protocol = "icmp" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			modify:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scanning.Workers = 8
	cfg.Logging.Format = "json"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Scanning.Workers != 8 {
		t.Errorf("Workers = %d, want 8", loaded.Scanning.Workers)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", loaded.Logging.Format)
	}
}
