package gemini

import (
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// progressReader logs how much of an upload has been read, at most once per
// interval plus once at EOF.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	logger *zap.Logger
	every  rate.Sometimes
	done   bool
}

func newProgressReader(r io.Reader, total int64, logger *zap.Logger, interval time.Duration) *progressReader {
	return &progressReader{
		r:      r,
		total:  total,
		logger: logger,
		every:  rate.Sometimes{Interval: interval},
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)

	if err == io.EOF {
		if !p.done {
			p.done = true
			p.log()
		}
		return n, err
	}
	p.every.Do(p.log)
	return n, err
}

func (p *progressReader) log() {
	p.logger.Info("upload progress",
		zap.Int64("sent_bytes", p.read),
		zap.Int64("total_bytes", p.total))
}
