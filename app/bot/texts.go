package bot

import (
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/dustin/go-humanize"
	"nuclight.org/upload-tg-bot/app/transfer"
	"nuclight.org/upload-tg-bot/pkg/localtime"
)

// Caption is attached to every uploaded document.
const Caption = "🎉 Uploaded by the File Upload Bot."

func startText(now time.Time) string {
	return "👋 <b>Welcome to the File Upload Bot!</b>\n\n" +
		"📅 Current time: " + localtime.Format(now) + "\n" +
		"📤 Send me a direct file URL to download and upload it to Telegram.\n" +
		"ℹ️ Use /help for more information."
}

func helpText(maxSize int64) string {
	return "📚 <b>Help - File Upload Bot</b>\n\n" +
		"🔧 <b>How to use</b>:\n" +
		"- Send a direct file URL (e.g. https://example.com/file.pdf).\n" +
		"- I'll download it and upload it here with progress updates.\n\n" +
		"📋 <b>Commands</b>:\n" +
		"- /start: Show welcome message.\n" +
		"- /help: Show this help message.\n\n" +
		"⚠️ <b>Notes</b>:\n" +
		"- Files must be at most " + humanize.IBytes(uint64(maxSize)) + " (Telegram Bot API limit).\n" +
		"- Ensure the URL is a direct link to a file."
}

func processingText() string {
	return "⏳ <b>Processing URL...</b>\n" +
		"🔗 Link received. Starting download..."
}

func progressText(st transfer.Status) string {
	name := html.EscapeString(st.Filename)

	switch st.Stage {
	case transfer.StageUploading:
		return "✅ <b>Download complete!</b>\n" +
			"📤 Uploading " + name + " to Telegram..."
	default:
		line := "📥 Downloaded: " + humanize.IBytes(uint64(st.Downloaded))
		if pct, ok := st.Percent(); ok {
			line = fmt.Sprintf("📥 Progress: %.1f%%", pct)
		}
		return "⏳ <b>Downloading...</b>\n" +
			line + "\n" +
			"📦 File: " + name
	}
}

// resultText renders the final state of the status message for what
// Pipeline.Run returned.
func resultText(res *transfer.Result, err error) string {
	if err == nil {
		return "✅ <b>Success!</b>\n" +
			"📦 File <code>" + html.EscapeString(res.Filename) + "</code> uploaded successfully! (" +
			humanize.IBytes(uint64(res.Size)) + ")\n" +
			"📅 Time: " + localtime.Format(res.CompletedAt)
	}

	var httpErr *transfer.HTTPFailureError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf(
			"❌ <b>Error</b>: Failed to download the file (HTTP %d). Invalid URL or server error.",
			httpErr.StatusCode,
		)
	}

	var tooLarge *transfer.TooLargeError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf(
			"❌ <b>Error</b>: File is too large (%s, limit %s). Telegram Bot API does not support this size.",
			humanize.IBytes(uint64(tooLarge.Size)), humanize.IBytes(uint64(tooLarge.Limit)),
		)
	}

	var uploadErr *transfer.UploadFailedError
	if errors.As(err, &uploadErr) {
		return "❌ <b>Error</b>: Failed to upload <code>" + html.EscapeString(uploadErr.Filename) +
			"</code> to Telegram: " + html.EscapeString(uploadErr.Err.Error())
	}

	return "❌ <b>Error</b>: An issue occurred: " + html.EscapeString(err.Error()) + "\n" +
		"Please check the URL and try again."
}
