// Package application provides dependency wiring for the command-line tools.
// It knows where the tools look for their files (working directory, plugin
// root, the executable's directory, home directory) and builds the production
// dispatcher on the Gemini backend.
package application
