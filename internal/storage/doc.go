// Package storage persists generated text results.
package storage
