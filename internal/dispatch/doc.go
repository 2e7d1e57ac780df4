// Package dispatch sends one document or image to a multimodal generation
// backend and delivers the text result to a file and to standard output.
//
// The steps run strictly in order: describe the target file, resolve the API
// key, optionally upload, generate, write the result. Every failure stops the
// run; nothing is retried.
package dispatch
