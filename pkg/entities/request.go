package entities

import (
	"time"

	"github.com/google/uuid"
)

// TransferRequest is one inbound URL to be fetched and sent back to a chat.
type TransferRequest struct {
	// ID is unique per request and keys the temporary file on disk
	ID string

	// URL is the message text, taken as is
	URL string

	ChatID    int64
	UserID    int64
	MessageID int
}

// NewTransferRequest returns a request with a fresh random ID.
func NewTransferRequest(url string, chatID, userID int64, messageID int) TransferRequest {
	return TransferRequest{
		ID:        uuid.NewString(),
		URL:       url,
		ChatID:    chatID,
		UserID:    userID,
		MessageID: messageID,
	}
}

// TransferRecord is a journal entry describing how a request ended.
type TransferRecord struct {
	ID        int64
	RequestID string
	ChatID    int64
	UserID    int64
	URL       string
	Filename  string
	Size      int64
	Outcome   Outcome
	Error     string
	CreatedAt time.Time
}
