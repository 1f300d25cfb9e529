// Package config handles configuration management for scaffoldcheck.
// It layers embedded TOML defaults, an optional TOML file, SCAFFOLDCHECK_*
// environment variables and command-line overrides, in that order.
package config
