package config

import (
	"os"
	"path/filepath"
)

const appDir = "flowerlove"

// fallbackDataDir is used when no home directory can be resolved.
const fallbackDataDir = "./data"

// DefaultDataDir picks where the pebble store lives when no --data-dir is
// given. XDG_DATA_HOME wins, then the first per-user location that exists on
// this host, then ~/.flowerlove.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return fallbackDataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	for _, c := range userDataCandidates(home) {
		if isDir(c.parent) {
			return filepath.Join(c.parent, c.sub, appDir)
		}
	}
	return filepath.Join(home, "."+appDir)
}

type dataCandidate struct {
	parent string
	sub    string
}

func userDataCandidates(home string) []dataCandidate {
	return []dataCandidate{
		{parent: filepath.Join(home, ".local"), sub: "share"},
		{parent: filepath.Join(home, "Library"), sub: "Application Support"},
		{parent: filepath.Join(home, "AppData"), sub: "Local"},
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
