package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOWERLOVE_"

// FromEnv overlays FLOWERLOVE_* environment variables onto cfg. Unparseable
// values are ignored.
func FromEnv(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				dst.Duration = d
			}
		}
	}

	str("DATA_DIR", &cfg.Server.DataDir)
	str("HTTP_ADDR", &cfg.Server.HTTPAddr)
	str("GRPC_ADDR", &cfg.Server.GRPCAddr)
	str("FSYNC", &cfg.Server.Fsync)
	if v := os.Getenv(EnvPrefix + "CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, p)
			}
		}
	}

	dur("TICK_INTERVAL", &cfg.Counter.TickInterval)
	str("STAGE_SCHEME", &cfg.Counter.StageScheme)
	dur("MILESTONE_SCAN_INTERVAL", &cfg.Counter.MilestoneScanInterval)

	dur("SESSION_TTL", &cfg.Auth.SessionTTL)
	str("ADMIN_USERNAME", &cfg.Auth.BootstrapAdmin.Username)
	str("ADMIN_PASSWORD", &cfg.Auth.BootstrapAdmin.Password)

	if v := os.Getenv(EnvPrefix + "MAX_PHOTOS_PER_PROFILE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Profiles.MaxPhotosPerProfile = n
		}
	}
	str("DEFAULT_THEME", &cfg.Profiles.DefaultTheme)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
}
