package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type report struct {
	written, total int64
}

func TestWriter_ThrottlesReports(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	var reports []report
	var buf bytes.Buffer
	pw := NewWriter(&buf, 40, 2*time.Second, func(written, total int64) {
		reports = append(reports, report{written, total})
	})
	pw.Now = clock.Now

	chunk := []byte("0123456789")

	// first chunk always reports
	_, err := pw.Write(chunk)
	require.NoError(t, err)

	// within the interval: no report
	clock.Advance(time.Second)
	_, err = pw.Write(chunk)
	require.NoError(t, err)

	// interval elapsed since last report
	clock.Advance(time.Second)
	_, err = pw.Write(chunk)
	require.NoError(t, err)

	clock.Advance(1999 * time.Millisecond)
	_, err = pw.Write(chunk)
	require.NoError(t, err)

	assert.Equal(t, []report{{10, 40}, {30, 40}}, reports)
	assert.Equal(t, int64(40), pw.Written())
	assert.Equal(t, 40, buf.Len())
}

func TestWriter_EmptyWriteIsIgnored(t *testing.T) {
	calls := 0
	var buf bytes.Buffer
	pw := NewWriter(&buf, 0, time.Second, func(int64, int64) { calls++ })

	n, err := pw.Write(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, calls)
	assert.Equal(t, int64(0), pw.Written())
}

func TestWriter_ReportsUnknownTotal(t *testing.T) {
	var got []report
	var buf bytes.Buffer
	pw := NewWriter(&buf, 0, time.Hour, func(written, total int64) {
		got = append(got, report{written, total})
	})

	_, err := pw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []report{{3, 0}}, got)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 2, errors.New("disk full")
}

func TestWriter_PropagatesWriteError(t *testing.T) {
	pw := NewWriter(failingWriter{}, 10, time.Second, nil)

	n, err := pw.Write([]byte("abcdef"))
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), pw.Written())
}
