// Package config locates, loads and validates the course configuration file
// (.canvas-config.json). It resolves the cookie store path against the file's
// own directory and exposes typed accessors with documented defaults for the
// optional backend and model selectors.
package config
