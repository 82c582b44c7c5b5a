package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"nuclight.org/upload-tg-bot/app/storage"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/localtime"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

var opts struct {
	DBPath   string `long:"db-path" env:"DB_PATH" required:"true" description:"path to the sqlite transfer journal"`
	Count    int    `short:"c" long:"count" default:"50" description:"number of transfers to show"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"debug" description:"log level (debug, info, warn, error)"`
}

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(opts.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.NewSQLite(ctx, opts.DBPath)
	if err != nil {
		log.Error("creating sqlite3 database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing sqlite3 database", "error", err)
		}
	}()

	records, err := db.ListTransfers(ctx, opts.Count)
	if err != nil {
		log.Error("listing transfers from database", "error", err)
		return
	}

	log.Info("transfers loaded from database", "count", len(records))

	stats := make(map[e.Outcome]int)

	// newest last, like a log
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		stats[rec.Outcome]++

		args := []any{
			"id", rec.ID,
			"time", localtime.Format(rec.CreatedAt),
			"tg_chat_id", rec.ChatID,
			"tg_user_id", rec.UserID,
			"url", rec.URL,
		}
		if rec.Filename != "" {
			args = append(args, "filename", rec.Filename, "size", humanize.IBytes(uint64(rec.Size)))
		}

		if rec.Outcome == e.OutcomeSuccess {
			log.Info(string(rec.Outcome), args...)
		} else {
			log.Warn(string(rec.Outcome), append(args, "error", rec.Error)...)
		}
	}

	log.Info("done",
		"success", stats[e.OutcomeSuccess],
		"http_failure", stats[e.OutcomeHTTPFailure],
		"too_large", stats[e.OutcomeTooLarge],
		"upload_failed", stats[e.OutcomeUploadFailed],
		"unexpected", stats[e.OutcomeUnexpected],
	)
}
