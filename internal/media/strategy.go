package media

// InlineLimit is the largest size, in bytes, sent inline with the request.
const InlineLimit int64 = 10 * 1024 * 1024

// Strategy is how file contents reach the backend.
type Strategy int

const (
	// Inline sends the raw bytes inside the generation request.
	Inline Strategy = iota
	// Uploaded uploads the file first and references the returned handle.
	Uploaded
)

func (s Strategy) String() string {
	switch s {
	case Inline:
		return "inline"
	case Uploaded:
		return "uploaded"
	default:
		return "unknown"
	}
}

// StrategyFor picks the transfer strategy for a file of size bytes.
func StrategyFor(size int64) Strategy {
	if size > InlineLimit {
		return Uploaded
	}
	return Inline
}
