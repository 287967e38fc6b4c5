// Package config loads client configuration from an optional YAML file,
// environment overrides, and defaults, in that order of precedence
// (environment wins).
package config
