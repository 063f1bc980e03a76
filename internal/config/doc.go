// Package config loads, normalizes, and validates tailpipe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TAILPIPE_STDIO_FILES. Command-line flags are applied by the CLI on top of
// the loaded Config, so precedence is flags, then environment, then file,
// then defaults.
package config
