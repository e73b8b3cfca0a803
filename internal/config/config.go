package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server" toml:"server"`
	Counter  CounterConfig  `json:"counter" yaml:"counter" toml:"counter"`
	Auth     AuthConfig     `json:"auth" yaml:"auth" toml:"auth"`
	Profiles ProfilesConfig `json:"profiles" yaml:"profiles" toml:"profiles"`
	Log      logpkg.Config  `json:"log" yaml:"log" toml:"log"`
}

// ServerConfig holds listener and storage settings. CLI flags win over these.
type ServerConfig struct {
	DataDir     string   `json:"dataDir" yaml:"dataDir" toml:"data_dir"`
	HTTPAddr    string   `json:"httpAddr" yaml:"httpAddr" toml:"http_addr"`
	GRPCAddr    string   `json:"grpcAddr" yaml:"grpcAddr" toml:"grpc_addr"`
	Fsync       string   `json:"fsync" yaml:"fsync" toml:"fsync"`
	CORSOrigins []string `json:"corsOrigins" yaml:"corsOrigins" toml:"cors_origins"`
}

// CounterConfig tunes the elapsed-duration engine.
type CounterConfig struct {
	// TickInterval is the live counter's refresh period.
	TickInterval Duration `json:"tickInterval" yaml:"tickInterval" toml:"tick_interval"`
	// StageScheme is "flower" (30/90/365/730 days) or "rose" (30/90/180/365).
	StageScheme string `json:"stageScheme" yaml:"stageScheme" toml:"stage_scheme"`
	// MilestoneScanInterval is how often the watcher looks for stage and
	// milestone changes across profiles.
	MilestoneScanInterval Duration `json:"milestoneScanInterval" yaml:"milestoneScanInterval" toml:"milestone_scan_interval"`
}

type AuthConfig struct {
	SessionTTL     Duration       `json:"sessionTTL" yaml:"sessionTTL" toml:"session_ttl"`
	BootstrapAdmin BootstrapAdmin `json:"bootstrapAdmin" yaml:"bootstrapAdmin" toml:"bootstrap_admin"`
}

// BootstrapAdmin is created at startup when no admin account exists.
type BootstrapAdmin struct {
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`
}

type ProfilesConfig struct {
	MaxPhotosPerProfile int    `json:"maxPhotosPerProfile" yaml:"maxPhotosPerProfile" toml:"max_photos_per_profile"`
	DefaultTheme        string `json:"defaultTheme" yaml:"defaultTheme" toml:"default_theme"`
}

// Duration is a time.Duration that reads and writes as "1s", "24h" and so on.
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr: ":8080",
			GRPCAddr: ":9090",
			Fsync:    "always",
		},
		Counter: CounterConfig{
			TickInterval:          Duration{elapsed.DefaultPeriod},
			StageScheme:           elapsed.SchemeFlower.Name,
			MilestoneScanInterval: Duration{time.Minute},
		},
		Auth: AuthConfig{
			SessionTTL:     Duration{7 * 24 * time.Hour},
			BootstrapAdmin: BootstrapAdmin{Username: "admin"},
		},
		Profiles: ProfilesConfig{
			MaxPhotosPerProfile: 5,
			DefaultTheme:        "default",
		},
		Log: logpkg.Config{Level: "info", Format: "text"},
	}
}

// Validate rejects values the services cannot run with.
func (c Config) Validate() error {
	if c.Counter.TickInterval.Duration <= 0 {
		return fmt.Errorf("config: counter.tickInterval must be positive")
	}
	if c.Counter.MilestoneScanInterval.Duration <= 0 {
		return fmt.Errorf("config: counter.milestoneScanInterval must be positive")
	}
	if _, err := elapsed.SchemeByName(c.Counter.StageScheme); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Auth.SessionTTL.Duration <= 0 {
		return fmt.Errorf("config: auth.sessionTTL must be positive")
	}
	if c.Profiles.MaxPhotosPerProfile <= 0 {
		return fmt.Errorf("config: profiles.maxPhotosPerProfile must be positive")
	}
	return nil
}

// Scheme resolves Counter.StageScheme.
func (c Config) Scheme() elapsed.Scheme {
	s, err := elapsed.SchemeByName(c.Counter.StageScheme)
	if err != nil {
		return elapsed.SchemeFlower
	}
	return s
}

// Load reads configuration from a JSON, YAML or TOML file (by extension) on
// top of Default. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(b), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
		if und := meta.Undecoded(); len(und) > 0 {
			return Config{}, fmt.Errorf("config: %s: unknown key %q", path, und[0].String())
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return cfg, nil
}
