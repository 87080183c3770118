package config

import (
	"os"
	"strings"
)

// Settings reads named runtime settings. Values are trimmed and an empty
// value is reported as absent. The zero value reads the process environment.
type Settings struct {
	lookup func(string) (string, bool)
}

// EnvSettings reads settings from the process environment
func EnvSettings() Settings {
	return Settings{lookup: os.LookupEnv}
}

// MapSettings reads settings from a fixed map
func MapSettings(values map[string]string) Settings {
	return Settings{lookup: func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}}
}

// Get returns the trimmed value of key and whether it is set
func (s Settings) Get(key string) (string, bool) {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// GetOr returns the value of key, or def when it is absent
func (s Settings) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}
