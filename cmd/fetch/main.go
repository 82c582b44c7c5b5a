package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"nuclight.org/upload-tg-bot/app/transfer"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/localtime"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

var opts struct {
	URL         string        `long:"url" required:"true" description:"file url to fetch"`
	OutputDir   string        `long:"output" env:"OUTPUT_DIR" default:"./files" description:"output directory for fetched files"`
	TempDir     string        `long:"temp-dir" env:"DOWNLOAD_DIR" default:"./downloads" description:"directory for temporary files"`
	MaxSize     string        `long:"max-size" default:"50MiB" description:"largest file that is kept"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"10m" description:"download timeout"`
	LogLevel    string        `long:"log-level" env:"LOG_LEVEL" default:"debug" description:"log level (debug, info, warn, error)"`
}

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(opts.LogLevel)
	log.Info("starting fetch", "url", opts.URL)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	maxSize, err := humanize.ParseBytes(opts.MaxSize)
	if err != nil {
		log.Error("parsing max size", "error", err)
		os.Exit(1)
	}

	pipeline := &transfer.Pipeline{
		Log:      log,
		HTTP:     &http.Client{Timeout: opts.HTTPTimeout},
		Uploader: &dirUploader{dir: opts.OutputDir},
		Dir:      opts.TempDir,
		MaxSize:  int64(maxSize),
	}

	req := e.NewTransferRequest(opts.URL, 0, 0, 0)

	res, err := pipeline.Run(ctx, req, func(_ context.Context, st transfer.Status) {
		if pct, ok := st.Percent(); ok {
			log.Debug("progress", "stage", st.Stage, "filename", st.Filename, "percent", fmt.Sprintf("%.1f", pct))
			return
		}
		log.Debug("progress", "stage", st.Stage, "filename", st.Filename, "downloaded", humanize.IBytes(uint64(st.Downloaded)))
	})
	if err != nil {
		log.Error("fetching file", "outcome", transfer.OutcomeOf(err), "error", err)
		os.Exit(1)
	}

	log.Info("done",
		"path", filepath.Join(opts.OutputDir, res.Filename),
		"size", humanize.IBytes(uint64(res.Size)),
		"time", localtime.Format(res.CompletedAt),
	)
}

// dirUploader stands in for the chat: "uploading" copies the file into dir.
type dirUploader struct {
	dir string
}

func (u *dirUploader) SendDocument(_ context.Context, _ int64, name string, r io.Reader, _ string) error {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	out, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if _, err = io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing file: %w", err)
	}

	return out.Close()
}
