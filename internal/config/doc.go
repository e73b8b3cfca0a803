// Package config loads flowerlove's runtime configuration. Default() is the
// baseline; Load overlays a JSON, YAML or TOML file and FromEnv overlays
// FLOWERLOVE_* variables.
//
//	cfg, err := config.Load("/etc/flowerlove.yaml")
//	if err != nil { ... }
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { ... }
package config
