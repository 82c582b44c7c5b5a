package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"nuclight.org/upload-tg-bot/app/transfer/progress"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

const (
	// DefaultMaxSize is the Bot API ceiling for documents sent by a bot
	DefaultMaxSize int64 = 50 * 1024 * 1024

	DefaultChunkSize = 8 * 1024

	// DefaultProgressInterval bounds the edit rate of the status message
	DefaultProgressInterval = 2 * time.Second

	dirPerm  = 0o755
	filePerm = 0o644
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Uploader sends a finished file to a chat.
type Uploader interface {
	SendDocument(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
}

type Stage string

const (
	StageDownloading Stage = "downloading"
	StageUploading   Stage = "uploading"
)

// Status is a progress snapshot handed to the StatusFunc.
type Status struct {
	Stage      Stage
	Filename   string
	Downloaded int64
	Expected   int64 // 0 if the server did not announce a size
}

// Percent returns the completed share of the download. The second value is
// false when the expected size is unknown.
func (s Status) Percent() (float64, bool) {
	if s.Expected <= 0 {
		return 0, false
	}
	return float64(s.Downloaded) / float64(s.Expected) * 100, true
}

// StatusFunc receives progress snapshots. It is called synchronously from Run.
type StatusFunc func(ctx context.Context, st Status)

type Result struct {
	Filename    string
	Size        int64
	CompletedAt time.Time
}

// Pipeline downloads the file behind a URL into Dir and hands it to the
// Uploader. Every run is sequential: probe, download, size check, upload.
// The temporary file is removed whatever the outcome.
type Pipeline struct {
	// Log is a logger
	Log logger.Logger

	// HTTP fetches remote files, redirects are expected to be followed
	HTTP HTTPClient

	// Uploader receives the downloaded file
	Uploader Uploader

	// Dir holds temporary files
	Dir string

	// Caption is attached to every uploaded document
	Caption string

	// MaxSize is the largest file that is uploaded, DefaultMaxSize if zero
	MaxSize int64

	// ChunkSize is the read buffer size, DefaultChunkSize if zero
	ChunkSize int

	// ProgressInterval is the minimum time between two progress reports,
	// DefaultProgressInterval if zero
	ProgressInterval time.Duration

	// Now is a clock, time.Now if nil
	Now func() time.Time
}

// Run performs one transfer. Returned errors are *HTTPFailureError,
// *TooLargeError, *UploadFailedError or anything else for unexpected failures.
func (p *Pipeline) Run(ctx context.Context, req e.TransferRequest, status StatusFunc) (*Result, error) {
	log := p.Log.With("request_id", req.ID, "tg_chat_id", req.ChatID)

	if status == nil {
		status = func(context.Context, Status) {}
	}

	expected := p.probeSize(ctx, log, req.URL)

	name, err := FilenameFromURL(req.URL, p.now())
	if err != nil {
		return nil, fmt.Errorf("deriving filename: %w", err)
	}

	localPath := p.localPath(req, name)
	defer p.removeFile(log, localPath)

	log.Info("downloading", "url", req.URL, "filename", name, "expected", sizeForLog(expected))

	size, err := p.download(ctx, req.URL, localPath, name, expected, status)
	if err != nil {
		return nil, err
	}

	log.Info("downloaded", "filename", name, "size", humanize.IBytes(uint64(size)))

	if limit := p.maxSize(); size > limit {
		return nil, &TooLargeError{Filename: name, Size: size, Limit: limit}
	}

	status(ctx, Status{Stage: StageUploading, Filename: name, Downloaded: size, Expected: expected})

	err = p.upload(ctx, req.ChatID, name, localPath)
	if err != nil {
		return nil, err
	}

	log.Info("uploaded", "filename", name)

	return &Result{
		Filename:    name,
		Size:        size,
		CompletedAt: p.now(),
	}, nil
}

// probeSize asks for the size with a HEAD request. Any failure, including a
// transport that rejects a malformed Content-Length, means the size is unknown;
// the GET that follows reports real network errors.
func (p *Pipeline) probeSize(ctx context.Context, log logger.Logger, rawURL string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		log.Warn("creating probe request", "error", err)
		return 0
	}

	resp, err := p.HTTP.Do(req)
	if err != nil {
		log.Warn("probing size", "url", rawURL, "error", err)
		return 0
	}
	defer func() { _ = resp.Body.Close() }()

	if v := resp.Header.Get("Content-Length"); v != "" {
		return parseContentLength(v)
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}

func (p *Pipeline) download(
	ctx context.Context, rawURL, localPath, name string, expected int64, status StatusFunc,
) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, &HTTPFailureError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err = os.MkdirAll(filepath.Dir(localPath), dirPerm); err != nil {
		return 0, fmt.Errorf("creating download directory: %w", err)
	}

	out, err := os.OpenFile(localPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	pw := progress.NewWriter(out, expected, p.progressInterval(), func(written, total int64) {
		status(ctx, Status{Stage: StageDownloading, Filename: name, Downloaded: written, Expected: total})
	})
	pw.Now = p.Now

	if err = copyChunks(pw, resp.Body, p.chunkSize()); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("writing file: %w", err)
	}

	if err = out.Close(); err != nil {
		return 0, fmt.Errorf("closing file: %w", err)
	}

	return pw.Written(), nil
}

func (p *Pipeline) upload(ctx context.Context, chatID int64, name, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening downloaded file: %w", err)
	}
	defer func() { _ = f.Close() }()

	err = p.Uploader.SendDocument(ctx, chatID, name, f, p.Caption)
	if err != nil {
		return &UploadFailedError{Filename: name, Err: err}
	}

	return nil
}

// localPath keys the file by request ID so that two requests deriving the
// same filename never share a file.
func (p *Pipeline) localPath(req e.TransferRequest, name string) string {
	return filepath.Join(p.Dir, req.ID+"_"+name)
}

func (p *Pipeline) removeFile(log logger.Logger, path string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing temporary file", "path", path, "error", err)
	}
}

// copyChunks moves src into dst one buffer at a time. Empty reads are
// skipped and never reach dst.
func copyChunks(dst io.Writer, src io.Reader, chunkSize int) error {
	buf := make([]byte, chunkSize)

	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
	}
}

func parseContentLength(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func sizeForLog(n int64) string {
	if n <= 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}

func (p *Pipeline) maxSize() int64 {
	if p.MaxSize > 0 {
		return p.MaxSize
	}
	return DefaultMaxSize
}

func (p *Pipeline) chunkSize() int {
	if p.ChunkSize > 0 {
		return p.ChunkSize
	}
	return DefaultChunkSize
}

func (p *Pipeline) progressInterval() time.Duration {
	if p.ProgressInterval > 0 {
		return p.ProgressInterval
	}
	return DefaultProgressInterval
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
