package progress

import (
	"io"
	"time"
)

// Writer wraps an io.Writer, counts every byte written through it and reports
// progress via a callback at most once per Interval of wall-clock time.
// The first non-empty write always reports.
type Writer struct {
	Writer     io.Writer
	Total      int64 // expected size, 0 if unknown
	Interval   time.Duration
	OnProgress func(written int64, total int64)
	Now        func() time.Time

	written    int64
	lastReport time.Time
}

func NewWriter(w io.Writer, total int64, interval time.Duration, cb func(written int64, total int64)) *Writer {
	return &Writer{
		Writer:     w,
		Total:      total,
		Interval:   interval,
		OnProgress: cb,
	}
}

func (pw *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := pw.Writer.Write(p)
	if n > 0 {
		pw.written += int64(n)
		pw.maybeReport()
	}
	return n, err
}

// Written returns the number of bytes accepted by the underlying writer.
func (pw *Writer) Written() int64 {
	return pw.written
}

func (pw *Writer) maybeReport() {
	if pw.OnProgress == nil {
		return
	}

	now := pw.now()
	if !pw.lastReport.IsZero() && now.Sub(pw.lastReport) < pw.Interval {
		return
	}

	pw.lastReport = now
	pw.OnProgress(pw.written, pw.Total)
}

func (pw *Writer) now() time.Time {
	if pw.Now != nil {
		return pw.Now()
	}
	return time.Now()
}
