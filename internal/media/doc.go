// Package media describes a file to be sent to a multimodal backend: its
// canonical path, byte size and MIME type, and the transfer strategy chosen
// from that size.
package media
