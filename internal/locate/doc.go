// Package locate finds a single file by probing an ordered list of candidate
// locations. The first candidate that exists as a regular file wins.
package locate
