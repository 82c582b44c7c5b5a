package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"
	"nuclight.org/upload-tg-bot/app/bot"
	"nuclight.org/upload-tg-bot/app/storage"
	"nuclight.org/upload-tg-bot/app/telegram"
	"nuclight.org/upload-tg-bot/app/transfer"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

var opts struct {
	TelegramAPIToken   string        `long:"telegram-api-token" env:"TELEGRAM_API_TOKEN" required:"true" description:"telegram api token"`
	TelegramWorkersNum int           `long:"telegram-workers-num" env:"TELEGRAM_WORKERS_NUM" default:"5" description:"number of workers for telegram bot"`
	DownloadDir        string        `long:"download-dir" env:"DOWNLOAD_DIR" default:"./downloads" description:"directory for temporary files"`
	DBPath             string        `long:"db-path" env:"DB_PATH" description:"path to the sqlite transfer journal, disabled if empty"`
	SentryDSN          string        `long:"sentry-dsn" env:"SENTRY_DSN" description:"sentry dsn, disabled if empty"`
	LogLevel           string        `long:"log-level" env:"LOG_LEVEL" default:"debug" description:"log level (debug, info, warn, error)"`
	HTTPTimeout        time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"10m" description:"timeout of a single file download or upload"`
}

var Revision = "dev"

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger(opts.LogLevel)
	log.Info("starting bot", "revision", Revision)

	if opts.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     opts.SentryDSN,
			Release: Revision,
		})
		if err != nil {
			log.Error("initializing sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		log.Error("creating download directory", "error", err)
		os.Exit(1)
	}

	var journal bot.Journal
	if opts.DBPath != "" {
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
		journal = db
	}

	api, err := telegram.NewBot(
		opts.TelegramAPIToken,
		telegram.WithHTTPClient(&http.Client{Timeout: opts.HTTPTimeout}),
	)
	if err != nil {
		log.Error("creating telegram bot", "error", err)
		os.Exit(1)
	}

	pipeline := newPipeline(log, api, opts.DownloadDir, opts.HTTPTimeout)

	handler := &bot.Handler{
		Log:       log,
		Messenger: api,
		Transfers: pipeline,
		Journal:   journal,
		MaxSize:   transfer.DefaultMaxSize,
	}

	client := &telegram.Client{
		Log:        log,
		Bot:        api,
		WorkersNum: opts.TelegramWorkersNum,
		Handler:    handler,
	}

	err = client.Start(ctx)
	if err != nil {
		log.Error("starting bot", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("stopping bot")

	client.Wait()
}

func newPipeline(log logger.Logger, uploader transfer.Uploader, dir string, timeout time.Duration) *transfer.Pipeline {
	return &transfer.Pipeline{
		Log:      log,
		HTTP:     &http.Client{Timeout: timeout},
		Uploader: uploader,
		Dir:      dir,
		Caption:  bot.Caption,
		MaxSize:  transfer.DefaultMaxSize,
	}
}
