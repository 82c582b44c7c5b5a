package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"nuclight.org/upload-tg-bot/app/transfer"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
}

type Transferer interface {
	Run(ctx context.Context, req e.TransferRequest, status transfer.StatusFunc) (*transfer.Result, error)
}

type Journal interface {
	SaveTransfer(ctx context.Context, rec e.TransferRecord) (int64, error)
}

// Handler answers /start and /help and turns every other text message into
// a transfer. Each transfer owns exactly one status message: it is sent once,
// as a reply to the URL, and then only edited, for progress as well as for the
// final outcome.
type Handler struct {
	// Log is a logger
	Log logger.Logger

	// Messenger sends and edits chat messages
	Messenger Messenger

	// Transfers runs the download and upload
	Transfers Transferer

	// Journal records finished transfers, may be nil
	Journal Journal

	// MaxSize is the upload ceiling shown in the help text
	MaxSize int64

	// Now is a clock, time.Now if nil
	Now func() time.Time
}

func (h *Handler) Start(ctx context.Context, chatID int64) error {
	_, err := h.Messenger.SendText(ctx, chatID, startText(h.now()))
	if err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}
	return nil
}

func (h *Handler) Help(ctx context.Context, chatID int64) error {
	maxSize := h.MaxSize
	if maxSize <= 0 {
		maxSize = transfer.DefaultMaxSize
	}

	_, err := h.Messenger.SendText(ctx, chatID, helpText(maxSize))
	if err != nil {
		return fmt.Errorf("sending help: %w", err)
	}
	return nil
}

// HandleURL runs a transfer for the message text. Transfer failures are
// reported in the status message and are not returned; only failures to
// create or finalize the status message are.
func (h *Handler) HandleURL(ctx context.Context, req e.TransferRequest) error {
	log := h.Log.With("request_id", req.ID, "tg_chat_id", req.ChatID)

	statusID, err := h.Messenger.ReplyText(ctx, req.ChatID, req.MessageID, processingText())
	if err != nil {
		return fmt.Errorf("sending status message: %w", err)
	}

	res, runErr := h.Transfers.Run(ctx, req, func(ctx context.Context, st transfer.Status) {
		err := h.Messenger.EditText(ctx, req.ChatID, statusID, progressText(st))
		if err != nil {
			// progress is best effort, the transfer goes on
			log.Warn("editing status message", "stage", st.Stage, "error", err)
		}
	})

	outcome := transfer.OutcomeOf(runErr)
	if runErr != nil {
		log.Warn("transfer failed", "outcome", outcome, "error", runErr)
	} else {
		log.Info("transfer finished", "filename", res.Filename, "size", res.Size)
	}

	if outcome == e.OutcomeUnexpected || outcome == e.OutcomeUploadFailed {
		sentry.CaptureException(runErr)
	}

	h.record(ctx, req, res, runErr)

	err = h.Messenger.EditText(ctx, req.ChatID, statusID, resultText(res, runErr))
	if err != nil {
		return fmt.Errorf("editing status message: %w", err)
	}

	return nil
}

func (h *Handler) record(ctx context.Context, req e.TransferRequest, res *transfer.Result, runErr error) {
	if h.Journal == nil {
		return
	}

	rec := e.TransferRecord{
		RequestID: req.ID,
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		URL:       req.URL,
		Outcome:   transfer.OutcomeOf(runErr),
		CreatedAt: h.now(),
	}

	if res != nil {
		rec.Filename = res.Filename
		rec.Size = res.Size
	}

	if runErr != nil {
		rec.Error = runErr.Error()

		var tooLarge *transfer.TooLargeError
		if errors.As(runErr, &tooLarge) {
			rec.Filename = tooLarge.Filename
			rec.Size = tooLarge.Size
		}

		var uploadErr *transfer.UploadFailedError
		if errors.As(runErr, &uploadErr) {
			rec.Filename = uploadErr.Filename
		}
	}

	_, err := h.Journal.SaveTransfer(ctx, rec)
	if err != nil {
		h.Log.Error("saving transfer record", "request_id", req.ID, "error", err)
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
